package store

import (
	"context"
	"errors"
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	requestTableName     = "requests"
	applicationTableName = "applications"
)

var (
	requestColumns     = utils.StructTagValues(types.Request{})
	applicationColumns = utils.StructTagValues(types.Application{})
)

const applicationCountColumn = "(SELECT COUNT(*) FROM applications ac WHERE ac.request_id = r.id) AS application_count"

// requestRow is a request plus the derived application count.
type requestRow struct {
	types.Request
	ApplicationCount int `db:"application_count"`
}

func (row *requestRow) toRequest() *types.Request {
	req := row.Request
	req.ApplicationCount = row.ApplicationCount
	return &req
}

type volunteerRequestRow struct {
	types.Request
	ApplicationCount  int                      `db:"application_count"`
	ApplicationStatus *types.ApplicationStatus `db:"application_status"`
	CreatorGivenName  *string                  `db:"creator_given_name"`
	CreatorFamilyName *string                  `db:"creator_family_name"`
	CreatorAvgRating  float64                  `db:"creator_avg_rating"`
}

func (row *volunteerRequestRow) toVolunteerRequest() *types.VolunteerRequest {
	req := row.Request
	req.ApplicationCount = row.ApplicationCount

	return &types.VolunteerRequest{
		Request:           &req,
		ApplicationStatus: types.ApplicationStateOf(row.ApplicationStatus),
		Creator: &types.UserSummary{
			ID:         req.CreatorID,
			GivenName:  row.CreatorGivenName,
			FamilyName: row.CreatorFamilyName,
			AvgRating:  row.CreatorAvgRating,
		},
	}
}

type applicationVolunteerRow struct {
	types.Application
	VolunteerGivenName  *string `db:"volunteer_given_name"`
	VolunteerFamilyName *string `db:"volunteer_family_name"`
	VolunteerAvgRating  float64 `db:"volunteer_avg_rating"`
}

// requestSelectColumns are the columns of a request projection over the
// alias r.
func requestSelectColumns() []string {
	return append(utils.PrefixColumns("r", requestColumns), applicationCountColumn)
}

func volunteerRequestSelectColumns() []string {
	return append(requestSelectColumns(),
		"a.status AS application_status",
		"u.given_name AS creator_given_name",
		"u.family_name AS creator_family_name",
		"u.avg_rating AS creator_avg_rating",
	)
}

var readOnlySnapshot = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

type RequestRepository struct {
	pool *pgxpool.Pool
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{pool: pool}
}

func (r *RequestRepository) CreateRequest(ctx context.Context, creatorID string, in *types.RequestInput) (*types.Request, error) {
	now := time.Now()

	req := &types.Request{
		CreatorID: creatorID,
		Status:    types.RequestStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.ApplyTo(req)

	requestMap := utils.StructToMap(req)
	delete(requestMap, "id")

	query, args, err := psql().
		Insert(requestTableName).
		SetMap(requestMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate create request query: %w", err)
	}

	err = withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, query, args...).Scan(&req.ID); err != nil {
			return storeError(err, "failed to create request")
		}

		if err := replaceRequestCategories(ctx, tx, req.ID, in.CategoryIDs); err != nil {
			return err
		}

		tags, err := categoriesForRequests(ctx, tx, []int64{req.ID})
		if err != nil {
			return err
		}
		attachCategories([]*types.Request{req}, tags)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// lockModifiableRequest locks the creator's request row and confirms no
// application of any status exists for it.
func lockModifiableRequest(ctx context.Context, tx pgx.Tx, creatorID string, requestID int64) (*types.Request, error) {
	query, args, err := psql().
		Select(requestColumns...).
		From(requestTableName).
		Where(sq.Eq{"id": requestID, "creator_id": creatorID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate lock request query: %w", err)
	}

	var req types.Request
	err = pgxscan.Get(ctx, tx, &req, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotModifiable
		}
		return nil, storeError(err, "failed to lock request")
	}

	var hasApplications bool
	err = tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM applications WHERE request_id = $1)", requestID).Scan(&hasApplications)
	if err != nil {
		return nil, storeError(err, "failed to check request applications")
	}

	if hasApplications {
		return nil, types.ErrRequestNotModifiable
	}

	return &req, nil
}

func (r *RequestRepository) UpdateRequest(ctx context.Context, creatorID string, requestID int64, in *types.RequestInput) (*types.Request, error) {
	var req *types.Request

	err := withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		locked, err := lockModifiableRequest(ctx, tx, creatorID, requestID)
		if err != nil {
			return err
		}

		in.ApplyTo(locked)
		locked.UpdatedAt = time.Now()

		query, args, err := psql().
			Update(requestTableName).
			SetMap(map[string]any{
				"name":        locked.Name,
				"description": locked.Description,
				"reward":      locked.Reward,
				"address":     locked.Address,
				"longitude":   locked.Longitude,
				"latitude":    locked.Latitude,
				"start_at":    locked.Start,
				"end_at":      locked.End,
				"updated_at":  locked.UpdatedAt,
			}).
			Where(sq.Eq{"id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate update request query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return storeError(err, "failed to update request")
		}

		if err := replaceRequestCategories(ctx, tx, requestID, in.CategoryIDs); err != nil {
			return err
		}

		tags, err := categoriesForRequests(ctx, tx, []int64{requestID})
		if err != nil {
			return err
		}
		attachCategories([]*types.Request{locked}, tags)

		req = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (r *RequestRepository) DeleteRequest(ctx context.Context, creatorID string, requestID int64) error {
	return withTx(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := lockModifiableRequest(ctx, tx, creatorID, requestID); err != nil {
			return err
		}

		query, args, err := psql().
			Delete(requestTableName).
			Where(sq.Eq{"id": requestID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate delete request query: %w", err)
		}

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return storeError(err, "failed to delete request")
		}

		return nil
	})
}

// CompleteRequest moves a CLOSED request to COMPLETED. Nothing else may
// complete.
func (r *RequestRepository) CompleteRequest(ctx context.Context, creatorID string, requestID int64) (*types.Request, error) {
	query, args, err := psql().
		Update(requestTableName).
		Set("status", types.RequestStatusCompleted).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": requestID, "creator_id": creatorID, "status": types.RequestStatusClosed}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate complete request query: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyCompleteFailure(ctx, creatorID, requestID)
	}
	if err != nil {
		return nil, storeError(err, "failed to complete request")
	}

	var req *types.Request
	err = withTx(ctx, r.pool, readOnlySnapshot, func(tx pgx.Tx) error {
		req, err = ownedRequest(ctx, tx, creatorID, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (r *RequestRepository) classifyCompleteFailure(ctx context.Context, creatorID string, requestID int64) error {
	var status types.RequestStatus
	err := r.pool.QueryRow(ctx,
		"SELECT status FROM requests WHERE id = $1 AND creator_id = $2",
		requestID, creatorID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrRequestNotFound
	}
	if err != nil {
		return storeError(err, "failed to classify complete failure")
	}

	if status == types.RequestStatusCompleted {
		return types.ErrAlreadyCompleted
	}

	return types.ErrInvalidTransition
}

func ownedRequest(ctx context.Context, q querier, creatorID string, requestID int64) (*types.Request, error) {
	query, args, err := psql().
		Select(requestSelectColumns()...).
		From(requestTableName + " r").
		Where(sq.Eq{"r.id": requestID, "r.creator_id": creatorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var row requestRow
	err = pgxscan.Get(ctx, q, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, storeError(err, "failed to fetch request")
	}

	req := row.toRequest()

	tags, err := categoriesForRequests(ctx, q, []int64{req.ID})
	if err != nil {
		return nil, err
	}
	attachCategories([]*types.Request{req}, tags)

	return req, nil
}

// RequestForHelpSeeker returns the creator's request with every application
// and the applying volunteers' public profiles.
func (r *RequestRepository) RequestForHelpSeeker(ctx context.Context, creatorID string, requestID int64) (*types.HelpSeekerRequestDetail, error) {
	var detail *types.HelpSeekerRequestDetail

	err := withTx(ctx, r.pool, readOnlySnapshot, func(tx pgx.Tx) error {
		req, err := ownedRequest(ctx, tx, creatorID, requestID)
		if err != nil {
			return err
		}

		applications, err := applicationsWithVolunteers(ctx, tx, requestID)
		if err != nil {
			return err
		}

		detail = &types.HelpSeekerRequestDetail{Request: req, Applications: applications}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

func applicationsWithVolunteers(ctx context.Context, q querier, requestID int64) ([]*types.ApplicationWithVolunteer, error) {
	columns := append(utils.PrefixColumns("a", applicationColumns),
		"u.given_name AS volunteer_given_name",
		"u.family_name AS volunteer_family_name",
		"u.avg_rating AS volunteer_avg_rating",
	)

	query, args, err := psql().
		Select(columns...).
		From(applicationTableName+" a").
		Join(userTableName+" u ON u.id = a.user_id").
		Where(sq.Eq{"a.request_id": requestID}).
		OrderBy("a.applied_at ASC", "a.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request applications query: %w", err)
	}

	var rows []*applicationVolunteerRow
	if err := pgxscan.Select(ctx, q, &rows, query, args...); err != nil {
		return nil, storeError(err, "failed to fetch request applications")
	}

	out := make([]*types.ApplicationWithVolunteer, 0, len(rows))
	for _, row := range rows {
		app := row.Application
		out = append(out, &types.ApplicationWithVolunteer{
			Application: &app,
			Volunteer: &types.UserSummary{
				ID:         app.UserID,
				GivenName:  row.VolunteerGivenName,
				FamilyName: row.VolunteerFamilyName,
				AvgRating:  row.VolunteerAvgRating,
			},
		})
	}

	return out, nil
}

// RequestForVolunteer returns any request along with the caller's own
// application state and the creator's public profile.
func (r *RequestRepository) RequestForVolunteer(ctx context.Context, volunteerID string, requestID int64) (*types.VolunteerRequest, error) {
	query, args, err := psql().
		Select(volunteerRequestSelectColumns()...).
		From(requestTableName+" r").
		Join(userTableName+" u ON u.id = r.creator_id").
		LeftJoin(applicationTableName+" a ON a.request_id = r.id AND a.user_id = ?", volunteerID).
		Where(sq.Eq{"r.id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate volunteer request query: %w", err)
	}

	var out *types.VolunteerRequest

	err = withTx(ctx, r.pool, readOnlySnapshot, func(tx pgx.Tx) error {
		var row volunteerRequestRow
		err := pgxscan.Get(ctx, tx, &row, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				return types.ErrRequestNotFound
			}
			return storeError(err, "failed to fetch request")
		}

		out = row.toVolunteerRequest()

		tags, err := categoriesForRequests(ctx, tx, []int64{out.ID})
		if err != nil {
			return err
		}
		attachCategories([]*types.Request{out.Request}, tags)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Request loads a request by id regardless of owner.
func (r *RequestRepository) Request(ctx context.Context, requestID int64) (*types.Request, error) {
	query, args, err := psql().
		Select(requestSelectColumns()...).
		From(requestTableName + " r").
		Where(sq.Eq{"r.id": requestID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request query: %w", err)
	}

	var row requestRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrRequestNotFound
		}
		return nil, storeError(err, "failed to fetch request")
	}

	req := row.toRequest()

	tags, err := categoriesForRequests(ctx, r.pool, []int64{req.ID})
	if err != nil {
		return nil, err
	}
	attachCategories([]*types.Request{req}, tags)

	return req, nil
}
