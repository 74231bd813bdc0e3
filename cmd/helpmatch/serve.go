package main

import (
	"context"
	"errors"
	"fmt"
	"helpmatch/internal/aggregate"
	"helpmatch/internal/db"
	"helpmatch/internal/events"
	"helpmatch/internal/identity"
	"helpmatch/internal/matching"
	"helpmatch/internal/server"
	"helpmatch/internal/store"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "migrate",
			Usage: "Apply pending migrations before serving",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(cCtx)
	if err != nil {
		return err
	}

	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	if config.JWKSURL == "" {
		return fmt.Errorf("set JWKS_URL")
	}

	if cCtx.Bool("migrate") {
		if err := db.Migrate(config.DatabaseURL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	requestRepo := store.NewRequestRepository(pool)
	applicationRepo := store.NewApplicationRepository(pool, acceptLockTimeout(config))
	queryRepo := store.NewQueryRepository(pool)
	categoryRepo := store.NewCategoryRepository(pool)

	maintainer := aggregate.NewMaintainer(userRepo, logger)

	var publisher events.Publisher = events.NewDirect(maintainer.HandleRating)
	if config.RedisAddr != "" {
		rdb, err := connectRedis(ctx, config.RedisAddr)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		publisher = events.NewRedisPublisher(rdb, config.RatingsChannel)
		logger.WithField("channel", config.RatingsChannel).Info("publishing rating events to redis")
	}

	jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := jwkCache.Register(ctx, config.JWKSURL); err != nil {
		return fmt.Errorf("failed to register jwks url with cache: %w", err)
	}

	verifier := identity.NewVerifier(jwkCache, config.JWKSURL, config.TokenIssuer, config.RoleClaim)

	srv := server.New(
		config,
		logger,
		verifier,
		userRepo,
		matching.NewRequestService(requestRepo, logger),
		matching.NewApplicationService(applicationRepo, logger),
		matching.NewRatingService(applicationRepo, publisher, logger),
		matching.NewQueryService(queryRepo, categoryRepo, logger),
	)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	logrus.WithField("addr", addr).Debug("connected to redis")

	return rdb, nil
}
