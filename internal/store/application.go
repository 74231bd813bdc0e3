package store

import (
	"context"
	"errors"
	"fmt"
	"helpmatch/internal/db"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// The accept protocol. The request row is locked by its creator together
// with the chosen volunteer's application, whatever that application's
// status is, so a second accept finds the request and fails on its status.
const (
	lockRequestForAcceptSQL = `
SELECT r.status
FROM requests r
JOIN applications a ON a.request_id = r.id
WHERE r.id = $1 AND r.creator_id = $2 AND a.user_id = $3
FOR UPDATE OF r, a`

	resolveApplicationsSQL = `
UPDATE applications
SET status = CASE WHEN user_id = $2 THEN 'ACCEPTED' ELSE 'DECLINED' END
WHERE request_id = $1`

	closeRequestSQL = `
UPDATE requests SET status = 'CLOSED', updated_at = $2
WHERE id = $1`
)

var ratingReturning = "RETURNING " + strings.Join(utils.PrefixColumns("a", applicationColumns), ", ")

var (
	rateVolunteerSQL = `
UPDATE applications a SET volunteer_rating = $3
FROM requests r
WHERE r.id = a.request_id
  AND a.request_id = $1
  AND r.creator_id = $2
  AND r.status = 'COMPLETED'
  AND a.status = 'ACCEPTED'
  AND a.volunteer_rating IS NULL
` + ratingReturning

	rateSeekerSQL = `
UPDATE applications a SET help_seeker_rating = $3
FROM requests r
WHERE r.id = a.request_id
  AND a.request_id = $1
  AND a.user_id = $2
  AND r.status = 'COMPLETED'
  AND a.status = 'ACCEPTED'
  AND a.help_seeker_rating IS NULL
` + ratingReturning + `, r.creator_id`
)

type ApplicationRepository struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewApplicationRepository builds the repository. A positive lockTimeout
// bounds how long accept waits on a row lock before failing as retryable.
func NewApplicationRepository(pool *pgxpool.Pool, lockTimeout time.Duration) *ApplicationRepository {
	return &ApplicationRepository{pool: pool, lockTimeout: lockTimeout}
}

func (r *ApplicationRepository) Apply(ctx context.Context, volunteerID string, requestID int64) (*types.Application, error) {
	query, args, err := psql().
		Insert(applicationTableName).
		Columns("request_id", "user_id", "status", "applied_at").
		Values(requestID, volunteerID, types.ApplicationStatusPending, time.Now()).
		Suffix("RETURNING " + strings.Join(applicationColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate apply query: %w", err)
	}

	var application types.Application

	err = withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		// The share lock orders apply against accept, update and delete.
		var status types.RequestStatus
		err := tx.QueryRow(ctx, "SELECT status FROM requests WHERE id = $1 FOR SHARE", requestID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrRequestNotFound
		}
		if err != nil {
			return storeError(err, "failed to lock request")
		}

		if status != types.RequestStatusOpen {
			return types.ErrRequestNotOpen
		}

		err = pgxscan.Get(ctx, tx, &application, query, args...)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return types.ErrApplicationExists
			}
			return storeError(err, "failed to create application")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}

// Withdraw deletes the volunteer's application while it is still pending.
func (r *ApplicationRepository) Withdraw(ctx context.Context, volunteerID string, requestID int64) error {
	query, args, err := psql().
		Delete(applicationTableName).
		Where(sq.Eq{
			"request_id": requestID,
			"user_id":    volunteerID,
			"status":     types.ApplicationStatusPending,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate withdraw query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return storeError(err, "failed to withdraw application")
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	err = r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM applications WHERE request_id = $1 AND user_id = $2)",
		requestID, volunteerID,
	).Scan(&exists)
	if err != nil {
		return storeError(err, "failed to classify withdraw failure")
	}

	if exists {
		return types.ErrCanNotWithdraw
	}

	return types.ErrApplicationNotFound
}

// Accept picks volunteerID for the creator's open request, declines every
// other application and closes the request, all in one transaction.
func (r *ApplicationRepository) Accept(ctx context.Context, creatorID string, requestID int64, volunteerID string) (*types.Application, error) {
	var accepted types.Application

	err := withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if r.lockTimeout > 0 {
			_, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds()))
			if err != nil {
				return storeError(err, "failed to set lock timeout")
			}
		}

		var status types.RequestStatus
		err := tx.QueryRow(ctx, lockRequestForAcceptSQL, requestID, creatorID, volunteerID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ErrNoRequestFound
		}
		if err != nil {
			return storeError(err, "failed to lock request for accept")
		}

		if status != types.RequestStatusOpen {
			return types.ErrCanNotAccept
		}

		if _, err := tx.Exec(ctx, resolveApplicationsSQL, requestID, volunteerID); err != nil {
			return storeError(err, "failed to resolve applications")
		}

		if _, err := tx.Exec(ctx, closeRequestSQL, requestID, time.Now()); err != nil {
			return storeError(err, "failed to close request")
		}

		query, args, err := psql().
			Select(applicationColumns...).
			From(applicationTableName).
			Where(sq.Eq{"request_id": requestID, "user_id": volunteerID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate accepted application query: %w", err)
		}

		if err := pgxscan.Get(ctx, tx, &accepted, query, args...); err != nil {
			return storeError(err, "failed to fetch accepted application")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &accepted, nil
}

// RateVolunteer records the creator's write-once score of the accepted
// volunteer on a completed request.
func (r *ApplicationRepository) RateVolunteer(ctx context.Context, creatorID string, requestID int64, rating int) (*types.RatedApplication, error) {
	var application types.Application
	err := pgxscan.Get(ctx, r.pool, &application, rateVolunteerSQL, requestID, creatorID, rating)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCannotBeRated
		}
		return nil, storeError(err, "failed to rate volunteer")
	}

	return &types.RatedApplication{
		Application: &application,
		RatedUserID: application.UserID,
		RatedRole:   types.RoleVolunteer,
		Rating:      rating,
	}, nil
}

type ratedSeekerRow struct {
	types.Application
	CreatorID string `db:"creator_id"`
}

// RateSeeker records the accepted volunteer's write-once score of the
// help-seeker on a completed request.
func (r *ApplicationRepository) RateSeeker(ctx context.Context, volunteerID string, requestID int64, rating int) (*types.RatedApplication, error) {
	var row ratedSeekerRow
	err := pgxscan.Get(ctx, r.pool, &row, rateSeekerSQL, requestID, volunteerID, rating)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCannotBeRated
		}
		return nil, storeError(err, "failed to rate help-seeker")
	}

	application := row.Application

	return &types.RatedApplication{
		Application: &application,
		RatedUserID: row.CreatorID,
		RatedRole:   types.RoleHelpSeeker,
		Rating:      rating,
	}, nil
}
