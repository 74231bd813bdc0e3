package store

import (
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalizedDiscover(t *testing.T, f types.DiscoverFilter) *types.DiscoverFilter {
	t.Helper()
	require.NoError(t, f.Normalize())
	return &f
}

func TestMyRequestsQueryDefaults(t *testing.T) {
	f := &types.MyRequestsFilter{}
	require.NoError(t, f.Normalize())

	l := myRequestsQuery("seeker-1", f)

	query, args, err := l.data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "FROM requests r WHERE r.creator_id = $1")
	assert.Contains(t, query, "AS application_count")
	assert.Contains(t, query, "ORDER BY r.created_at DESC, r.id ASC")
	assert.Contains(t, query, "LIMIT 20 OFFSET 0")
	assert.NotContains(t, query, "r.status =")
	assert.Equal(t, []any{"seeker-1"}, args)

	countQuery, countArgs, err := l.count.ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) FROM requests r WHERE r.creator_id = $1", countQuery)
	assert.Equal(t, args, countArgs)
}

func TestMyRequestsQueryStatusAndSort(t *testing.T) {
	f := &types.MyRequestsFilter{
		PageParams: types.PageParams{Page: 3, Limit: 10},
		Status:     "closed",
		Sort:       types.SortKeyReward,
		Order:      "ASC",
	}
	require.NoError(t, f.Normalize())

	query, args, err := myRequestsQuery("seeker-1", f).data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE r.creator_id = $1 AND r.status = $2")
	assert.Contains(t, query, "ORDER BY r.reward ASC, r.id ASC")
	assert.Contains(t, query, "LIMIT 10 OFFSET 20")
	assert.Equal(t, []any{"seeker-1", "CLOSED"}, args)
}

func TestDiscoverQueryDefaults(t *testing.T) {
	f := normalizedDiscover(t, types.DiscoverFilter{})

	l := discoverQuery("vol-1", f)

	query, args, err := l.data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "JOIN users u ON u.id = r.creator_id")
	assert.Contains(t, query, "LEFT JOIN applications a ON a.request_id = r.id AND a.user_id = $1")
	assert.Contains(t, query, "WHERE r.status = $2")
	assert.Contains(t, query, "a.status AS application_status")
	assert.Contains(t, query, "ORDER BY r.start_at DESC, r.id ASC")
	assert.NotContains(t, query, "ST_DWithin")
	assert.NotContains(t, query, "request_categories")
	assert.Equal(t, []any{"vol-1", "OPEN"}, args)

	countQuery, countArgs, err := l.count.ToSql()
	require.NoError(t, err)

	assert.Contains(t, countQuery, "SELECT COUNT(*) FROM requests r")
	assert.NotContains(t, countQuery, "ORDER BY")
	assert.NotContains(t, countQuery, "LIMIT")
	assert.Equal(t, args, countArgs)
}

func TestDiscoverQueryApplied(t *testing.T) {
	f := normalizedDiscover(t, types.DiscoverFilter{Status: types.StatusFilterApplied})

	query, args, err := discoverQuery("vol-1", f).data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "WHERE a.id IS NOT NULL")
	assert.Equal(t, []any{"vol-1"}, args)
}

func TestDiscoverQueryAllHasNoStatusPredicate(t *testing.T) {
	f := normalizedDiscover(t, types.DiscoverFilter{Status: types.StatusFilterAll})

	query, _, err := discoverQuery("vol-1", f).data.ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "r.status =")
	assert.NotContains(t, query, "a.id IS NOT NULL")
}

func TestMyRequestsQueryHugePageSaturatesOffset(t *testing.T) {
	f := &types.MyRequestsFilter{PageParams: types.PageParams{Page: math.MaxInt64 / 10, Limit: 40}}
	require.NoError(t, f.Normalize())

	query, _, err := myRequestsQuery("seeker-1", f).data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, fmt.Sprintf("LIMIT 40 OFFSET %d", int64(math.MaxInt64)))
}

func TestDiscoverQueryCategoriesAndRadius(t *testing.T) {
	f := normalizedDiscover(t, types.DiscoverFilter{
		Status:      types.StatusFilterCompleted,
		CategoryIDs: []string{"cat-a", "cat-b"},
		Latitude:    utils.Float64Ptr(52.52),
		Longitude:   utils.Float64Ptr(13.405),
		RadiusKm:    2.5,
		Sort:        types.SortKeyReward,
		Order:       types.SortAsc,
	})

	query, args, err := discoverQuery("vol-1", f).data.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "r.status = $2")
	assert.Contains(t, query, "EXISTS (SELECT 1 FROM request_categories rc WHERE rc.request_id = r.id AND rc.category_id = ANY($3))")
	assert.Contains(t, query, "ST_DWithin(r.location, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography, $6)")
	assert.Contains(t, query, "ORDER BY r.reward ASC, r.id ASC")
	assert.Equal(t, []any{"vol-1", "COMPLETED", []string{"cat-a", "cat-b"}, 13.405, 52.52, 2500.0}, args)
}

func TestDiscoverQueryDefaultRadius(t *testing.T) {
	f := normalizedDiscover(t, types.DiscoverFilter{
		Latitude:  utils.Float64Ptr(0),
		Longitude: utils.Float64Ptr(0),
	})

	_, args, err := discoverQuery("vol-1", f).data.ToSql()
	require.NoError(t, err)

	assert.Equal(t, float64(types.DefaultRadiusKm*1000), args[len(args)-1])
}

func TestOrderClauseFallsBackToCreatedAt(t *testing.T) {
	assert.Equal(t, "r.created_at DESC", orderClause("unknown", ""))
	assert.Equal(t, "r.start_at ASC", orderClause(types.SortKeyStart, types.SortAsc))
}

func TestBuildUpdateClauseIsSorted(t *testing.T) {
	assert.Equal(t,
		"description = EXCLUDED.description, name = EXCLUDED.name, slug = EXCLUDED.slug",
		buildUpdateClause([]string{"slug", "name", "description"}),
	)
}

func TestRatingStatementsReturnApplicationColumns(t *testing.T) {
	for _, column := range applicationColumns {
		assert.Contains(t, rateVolunteerSQL, "a."+column)
		assert.Contains(t, rateSeekerSQL, "a."+column)
	}
	assert.Contains(t, rateSeekerSQL, ", r.creator_id")
	assert.Contains(t, rateVolunteerSQL, "a.volunteer_rating IS NULL")
	assert.Contains(t, rateSeekerSQL, "a.help_seeker_rating IS NULL")
}
