package main

import (
	"context"
	"fmt"
	"helpmatch/internal/db"
	"helpmatch/internal/store"
	"strconv"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var showCommand = &cli.Command{
	Name:      "show",
	Usage:     "Pretty-print a stored request",
	ArgsUsage: "<request-id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	},
	Action: func(c *cli.Context) error {
		id, err := strconv.ParseInt(c.Args().First(), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("usage: show <request-id>")
		}

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		req, err := store.NewRequestRepository(pool).Request(ctx, id)
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetColoringEnabled(!c.Bool("no-color"))
		_, err = printer.Println(req)
		return err
	},
}
