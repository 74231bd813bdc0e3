package main

import (
	"context"
	"fmt"
	"helpmatch/internal/db"
	"helpmatch/internal/seed"
	"helpmatch/internal/store"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Sync the category catalog and optionally write demo data",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "demo",
			Usage: "Also create demo users, requests and applications",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger := logrus.StandardLogger()
		logger.Info("connected to database")

		if err := seed.SyncCategories(ctx, store.NewCategoryRepository(pool), logger); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		if !c.Bool("demo") {
			return nil
		}

		stores := seed.DemoStores{
			Users:        store.NewUserRepository(pool),
			Requests:     store.NewRequestRepository(pool),
			Applications: store.NewApplicationRepository(pool, acceptLockTimeout(cfg)),
			Listings:     store.NewQueryRepository(pool),
		}

		if err := seed.SeedDemo(ctx, stores, time.Now(), logger); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}

		return nil
	},
}
