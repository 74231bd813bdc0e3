package store

import (
	"context"
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userTableName = "users"

var userColumns = utils.StructTagValues(types.User{})

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(sq.Eq{"id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.pool, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, storeError(err, "failed to fetch user")
	}

	return &user, nil
}

// UpsertIdentity records the verified identity claims of a caller. The
// aggregate rating is never touched here.
func (r *UserRepository) UpsertIdentity(ctx context.Context, userID, email, givenName, familyName string, isVolunteer bool) error {
	now := time.Now()

	query, args, err := psql().
		Insert(userTableName).
		Columns("id", "email", "given_name", "family_name", "is_volunteer", "created_at", "updated_at").
		Values(userID, trimmedOrNil(email), trimmedOrNil(givenName), trimmedOrNil(familyName), isVolunteer, now, now).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause([]string{"email", "given_name", "family_name", "is_volunteer", "updated_at"})).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert identity user query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return storeError(err, "failed to upsert user identity fields")
	}

	return nil
}

const recomputeVolunteerRatingSQL = `
UPDATE users SET avg_rating = COALESCE((
	SELECT AVG(a.volunteer_rating)::double precision
	FROM applications a
	WHERE a.user_id = $1 AND a.volunteer_rating IS NOT NULL
), 0), updated_at = $2
WHERE id = $1
RETURNING avg_rating`

const recomputeHelpSeekerRatingSQL = `
UPDATE users SET avg_rating = COALESCE((
	SELECT AVG(a.help_seeker_rating)::double precision
	FROM applications a
	JOIN requests r ON r.id = a.request_id
	WHERE r.creator_id = $1 AND a.help_seeker_rating IS NOT NULL
), 0), updated_at = $2
WHERE id = $1
RETURNING avg_rating`

// RecomputeAverageRating derives the user's avg_rating from every rating they
// received in the given role and stores it.
func (r *UserRepository) RecomputeAverageRating(ctx context.Context, userID string, role types.Role) (float64, error) {
	var query string
	switch role {
	case types.RoleVolunteer:
		query = recomputeVolunteerRatingSQL
	case types.RoleHelpSeeker:
		query = recomputeHelpSeekerRatingSQL
	default:
		return 0, fmt.Errorf("unknown role %q", role)
	}

	var avg float64
	err := r.pool.QueryRow(ctx, query, userID, time.Now()).Scan(&avg)
	if err != nil {
		if pgxscan.NotFound(err) {
			return 0, types.ErrUserNotFound
		}
		return 0, storeError(err, "failed to recompute average rating")
	}

	return avg, nil
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
