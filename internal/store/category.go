package store

import (
	"context"
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	categoryTableName        = "categories"
	requestCategoryTableName = "request_categories"
)

var categoryColumns = utils.StructTagValues(types.Category{})

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) AllCategories(ctx context.Context) ([]*types.Category, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("display_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	var categories []*types.Category
	err = pgxscan.Select(ctx, r.pool, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) AllCategoriesUnfiltered(ctx context.Context) ([]*types.Category, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		OrderBy("display_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	var categories []*types.Category
	err = pgxscan.Select(ctx, r.pool, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) UpsertCategory(ctx context.Context, category *types.Category) error {
	categoryMap := utils.StructToMap(category)
	delete(categoryMap, "created_at")

	updateColumns := make([]string, 0, len(categoryMap))
	for k := range categoryMap {
		if k != "id" {
			updateColumns = append(updateColumns, k)
		}
	}

	query, args, err := psql().
		Insert(categoryTableName).
		SetMap(categoryMap).
		Suffix("ON CONFLICT (id) DO UPDATE SET " + buildUpdateClause(updateColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}

	return nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, id string) error {
	query, args, err := psql().
		Delete(categoryTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

// buildUpdateClause creates the SET clause for ON CONFLICT DO UPDATE,
// e.g. "description = EXCLUDED.description, name = EXCLUDED.name".
func buildUpdateClause(columns []string) string {
	sort.Strings(columns)

	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}

	return strings.Join(parts, ", ")
}

// replaceRequestCategories makes the request's category set exactly the
// catalog entries among ids. Unknown ids are dropped.
func replaceRequestCategories(ctx context.Context, q querier, requestID int64, ids []string) error {
	query, args, err := psql().
		Delete(requestCategoryTableName).
		Where(sq.Eq{"request_id": requestID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate clear request categories query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return storeError(err, "failed to clear request categories")
	}

	if len(ids) == 0 {
		return nil
	}

	known := sq.Select().
		Column(sq.Expr("?::bigint", requestID)).
		Column("c.id").
		From(categoryTableName + " c").
		Where(sq.Eq{"c.id": ids})

	query, args, err = psql().
		Insert(requestCategoryTableName).
		Columns("request_id", "category_id").
		Select(known).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate attach request categories query: %w", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return storeError(err, "failed to attach request categories")
	}

	return nil
}

// categoriesForRequests loads the category tags of several requests at once.
func categoriesForRequests(ctx context.Context, q querier, requestIDs []int64) (map[int64][]*types.CategoryTag, error) {
	out := make(map[int64][]*types.CategoryTag, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}

	query, args, err := psql().
		Select("rc.request_id", "c.id", "c.name").
		From(requestCategoryTableName+" rc").
		Join(categoryTableName+" c ON c.id = rc.category_id").
		Where(sq.Eq{"rc.request_id": requestIDs}).
		OrderBy("rc.request_id", "c.display_order", "c.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate request categories query: %w", err)
	}

	var tags []*types.CategoryTag
	if err := pgxscan.Select(ctx, q, &tags, query, args...); err != nil {
		return nil, storeError(err, "failed to fetch request categories")
	}

	for _, tag := range tags {
		out[tag.RequestID] = append(out[tag.RequestID], tag)
	}

	return out, nil
}

func attachCategories(requests []*types.Request, tags map[int64][]*types.CategoryTag) {
	for _, req := range requests {
		req.Categories = tags[req.ID]
		if req.Categories == nil {
			req.Categories = make([]*types.CategoryTag, 0)
		}
	}
}
