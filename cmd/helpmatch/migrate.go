package main

import (
	"fmt"
	"helpmatch/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply or roll back schema migrations",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Apply all pending migrations",
			Action: func(c *cli.Context) error {
				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}

				if err := db.Migrate(cfg.DatabaseURL); err != nil {
					return err
				}

				logrus.Info("migrations applied")
				return nil
			},
		},
		{
			Name:  "down",
			Usage: "Roll back migrations",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "steps",
					Usage: "Number of migrations to roll back",
					Value: 1,
				},
			},
			Action: func(c *cli.Context) error {
				steps := c.Int("steps")
				if steps < 1 {
					return fmt.Errorf("steps must be at least 1")
				}

				cfg, err := loadConfig(c)
				if err != nil {
					return err
				}

				if err := db.MigrateDown(cfg.DatabaseURL, steps); err != nil {
					return err
				}

				logrus.WithField("steps", steps).Info("migrations rolled back")
				return nil
			},
		},
	},
}
