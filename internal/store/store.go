package store

import (
	"context"
	"errors"
	"fmt"
	"helpmatch/internal/db"
	"helpmatch/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// withTx runs fn inside a transaction. The transaction is rolled back when
// fn fails or ctx is cancelled before commit.
func withTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return storeError(err, "failed to begin transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError(err, "failed to commit transaction")
	}

	return nil
}

// storeError wraps a driver error, tagging retryable failures with
// types.ErrStoreUnavailable. Domain errors pass through untouched.
func storeError(err error, msg string) error {
	if err == nil {
		return nil
	}

	var domainErr *types.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if db.IsTransient(err) {
		return fmt.Errorf("%s: %w: %w", msg, types.ErrStoreUnavailable, err)
	}

	return fmt.Errorf("%s: %w", msg, err)
}
