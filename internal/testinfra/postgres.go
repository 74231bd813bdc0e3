// Package testinfra boots a migrated PostGIS database for integration tests.
package testinfra

import (
	"context"
	"errors"
	"fmt"
	"helpmatch/internal/db"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// DatabaseURLEnv names a pre-provisioned database used instead of a
// container. Its contents are truncated between tests.
const DatabaseURLEnv = "HELPMATCH_TEST_DATABASE_URL"

const postgisImage = "postgis/postgis:16-3.4"

// ErrUnavailable is returned when neither a database URL nor Docker is
// available.
var ErrUnavailable = errors.New("no test database: set " + DatabaseURLEnv + " or run docker")

// Harness owns the lifecycle of the test database and its pool.
type Harness struct {
	container *postgres.PostgresContainer
	pool      *pgxpool.Pool
	dsn       string
}

// NewHarness connects to DatabaseURLEnv when set, otherwise starts a PostGIS
// container, and applies the embedded migrations.
func NewHarness(ctx context.Context) (*Harness, error) {
	h := &Harness{dsn: os.Getenv(DatabaseURLEnv)}

	if h.dsn == "" {
		if !dockerAvailable(ctx) {
			return nil, ErrUnavailable
		}

		container, err := postgres.Run(ctx, postgisImage,
			postgres.WithDatabase("helpmatch"),
			postgres.WithUsername("helpmatch"),
			postgres.WithPassword("helpmatch"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			return nil, fmt.Errorf("start postgis container: %w", err)
		}
		h.container = container

		h.dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			h.Close(ctx)
			return nil, fmt.Errorf("resolve connection string: %w", err)
		}
	}

	if err := db.Migrate(h.dsn); err != nil {
		h.Close(ctx)
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(h.dsn)
	if err != nil {
		h.Close(ctx)
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	cfg.MaxConns = 32
	cfg.MaxConnIdleTime = 30 * time.Second

	h.pool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		h.Close(ctx)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	return h, nil
}

func (h *Harness) Pool() *pgxpool.Pool {
	return h.pool
}

func (h *Harness) DSN() string {
	return h.dsn
}

// Close tears down resources.
func (h *Harness) Close(ctx context.Context) {
	if h.pool != nil {
		h.pool.Close()
	}
	if h.container != nil {
		_ = h.container.Terminate(ctx)
	}
}

// Reset truncates every mutable table.
func (h *Harness) Reset(ctx context.Context) error {
	tables := []string{
		"applications",
		"request_categories",
		"requests",
		"categories",
		"users",
	}

	_, err := h.pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("reset tables: %w", err)
	}

	return nil
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}
