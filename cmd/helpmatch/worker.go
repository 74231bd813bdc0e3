package main

import (
	"context"
	"fmt"
	"helpmatch/internal/aggregate"
	"helpmatch/internal/db"
	"helpmatch/internal/events"
	"helpmatch/internal/store"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

var workerCommand = &cli.Command{
	Name:  "ratings-worker",
	Usage: "Consume rating events and keep users' average ratings current",
	Action: func(c *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		if cfg.RedisAddr == "" {
			return fmt.Errorf("set REDIS_ADDR")
		}

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		rdb, err := connectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		maintainer := aggregate.NewMaintainer(store.NewUserRepository(pool), logger)

		err = events.Subscribe(ctx, rdb, cfg.RatingsChannel, maintainer.HandleRating, logger)
		logger.Info("ratings worker stopped")

		return err
	},
}
