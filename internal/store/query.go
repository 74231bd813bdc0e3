package store

import (
	"context"
	"fmt"
	"helpmatch/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var sortColumns = map[string]string{
	types.SortKeyCreatedAt: "r.created_at",
	types.SortKeyStart:     "r.start_at",
	types.SortKeyReward:    "r.reward",
}

// listing is a filtered request predicate split into the page query and
// the count query over the same predicate.
type listing struct {
	data  sq.SelectBuilder
	count sq.SelectBuilder
}

func newListing(base sq.SelectBuilder, columns []string, sort string, order types.SortOrder, page types.PageParams) listing {
	return listing{
		data: base.
			Columns(columns...).
			OrderBy(orderClause(sort, order), "r.id ASC").
			Limit(uint64(page.Limit)).
			Offset(page.Offset()),
		count: base.Columns("COUNT(*)"),
	}
}

func orderClause(sort string, order types.SortOrder) string {
	column, ok := sortColumns[sort]
	if !ok {
		column = sortColumns[types.SortKeyCreatedAt]
	}

	direction := "DESC"
	if order == types.SortAsc {
		direction = "ASC"
	}

	return fmt.Sprintf("%s %s", column, direction)
}

// myRequestsQuery builds the listing of a help-seeker's own requests. The
// filter must already be normalized.
func myRequestsQuery(creatorID string, f *types.MyRequestsFilter) listing {
	base := psql().
		Select().
		From(requestTableName + " r").
		Where(sq.Eq{"r.creator_id": creatorID})

	if f.Status != types.StatusFilterAll {
		base = base.Where(sq.Eq{"r.status": string(f.Status)})
	}

	return newListing(base, requestSelectColumns(), f.Sort, f.Order, f.PageParams)
}

// discoverQuery builds the volunteer listing. The left join on the caller's
// own application yields at most one row per request because
// (request_id, user_id) is unique.
func discoverQuery(volunteerID string, f *types.DiscoverFilter) listing {
	base := psql().
		Select().
		From(requestTableName+" r").
		Join(userTableName+" u ON u.id = r.creator_id").
		LeftJoin(applicationTableName+" a ON a.request_id = r.id AND a.user_id = ?", volunteerID)

	switch f.Status {
	case types.StatusFilterOpen:
		base = base.Where(sq.Eq{"r.status": string(types.RequestStatusOpen)})
	case types.StatusFilterCompleted:
		base = base.Where(sq.Eq{"r.status": string(types.RequestStatusCompleted)})
	case types.StatusFilterApplied:
		base = base.Where("a.id IS NOT NULL")
	}

	if len(f.CategoryIDs) > 0 {
		base = base.Where(
			"EXISTS (SELECT 1 FROM request_categories rc WHERE rc.request_id = r.id AND rc.category_id = ANY(?))",
			f.CategoryIDs,
		)
	}

	if f.HasLocation() {
		base = base.Where(
			"ST_DWithin(r.location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)",
			*f.Longitude, *f.Latitude, f.RadiusKm*1000,
		)
	}

	return newListing(base, volunteerRequestSelectColumns(), f.Sort, f.Order, f.PageParams)
}

type QueryRepository struct {
	pool *pgxpool.Pool
}

func NewQueryRepository(pool *pgxpool.Pool) *QueryRepository {
	return &QueryRepository{pool: pool}
}

// run executes both halves of a listing, and then decorate, against one
// snapshot so the total agrees with the page.
func (r *QueryRepository) run(ctx context.Context, l listing, dest any, decorate func(q querier) error) (int, error) {
	dataQuery, dataArgs, err := l.data.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate listing query: %w", err)
	}

	countQuery, countArgs, err := l.count.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate listing count query: %w", err)
	}

	var total int
	err = withTx(ctx, r.pool, readOnlySnapshot, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return storeError(err, "failed to count requests")
		}

		if err := pgxscan.Select(ctx, tx, dest, dataQuery, dataArgs...); err != nil {
			return storeError(err, "failed to list requests")
		}

		return decorate(tx)
	})
	if err != nil {
		return 0, err
	}

	return total, nil
}

func (r *QueryRepository) MyRequests(ctx context.Context, creatorID string, f *types.MyRequestsFilter) (*types.Page[*types.Request], error) {
	var (
		rows     []*requestRow
		requests []*types.Request
	)

	total, err := r.run(ctx, myRequestsQuery(creatorID, f), &rows, func(q querier) error {
		requests = make([]*types.Request, 0, len(rows))
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			requests = append(requests, row.toRequest())
			ids = append(ids, row.ID)
		}

		tags, err := categoriesForRequests(ctx, q, ids)
		if err != nil {
			return err
		}
		attachCategories(requests, tags)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return types.NewPage(requests, f.PageParams, total), nil
}

func (r *QueryRepository) DiscoverRequests(ctx context.Context, volunteerID string, f *types.DiscoverFilter) (*types.Page[*types.VolunteerRequest], error) {
	var (
		rows []*volunteerRequestRow
		out  []*types.VolunteerRequest
	)

	total, err := r.run(ctx, discoverQuery(volunteerID, f), &rows, func(q querier) error {
		out = make([]*types.VolunteerRequest, 0, len(rows))
		requests := make([]*types.Request, 0, len(rows))
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			vr := row.toVolunteerRequest()
			out = append(out, vr)
			requests = append(requests, vr.Request)
			ids = append(ids, vr.ID)
		}

		tags, err := categoriesForRequests(ctx, q, ids)
		if err != nil {
			return err
		}
		attachCategories(requests, tags)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return types.NewPage(out, f.PageParams, total), nil
}
