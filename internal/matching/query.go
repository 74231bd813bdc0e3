package matching

import (
	"context"
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"

	"github.com/sirupsen/logrus"
)

type QueryService struct {
	queries    QueryStore
	categories CategoryStore
	logger     logrus.FieldLogger
}

func NewQueryService(queries QueryStore, categories CategoryStore, logger logrus.FieldLogger) *QueryService {
	return &QueryService{queries: queries, categories: categories, logger: logger}
}

// MyRequests lists the actor's own requests.
func (s *QueryService) MyRequests(ctx context.Context, actor *identity.Actor, f *types.MyRequestsFilter) (page *types.Page[*types.Request], err error) {
	defer func() {
		observe(s.logger, "my_requests", actor, nil, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	if f == nil {
		f = &types.MyRequestsFilter{}
	}
	if err := f.Normalize(); err != nil {
		return nil, err
	}

	return s.queries.MyRequests(ctx, actor.ID, f)
}

// DiscoverRequests lists requests for a volunteer along with the actor's own
// application state on each.
func (s *QueryService) DiscoverRequests(ctx context.Context, actor *identity.Actor, f *types.DiscoverFilter) (page *types.Page[*types.VolunteerRequest], err error) {
	defer func() {
		observe(s.logger, "discover_requests", actor, nil, err)
	}()

	if err := identity.Authorize(actor, types.RoleVolunteer); err != nil {
		return nil, err
	}

	if f == nil {
		f = &types.DiscoverFilter{}
	}
	if err := f.Normalize(); err != nil {
		return nil, err
	}

	return s.queries.DiscoverRequests(ctx, actor.ID, f)
}

func (s *QueryService) Categories(ctx context.Context) (categories []*types.Category, err error) {
	defer func() {
		observe(s.logger, "categories", nil, nil, err)
	}()

	categories, err = s.categories.AllCategories(ctx)
	if err != nil {
		return nil, err
	}

	if categories == nil {
		categories = make([]*types.Category, 0)
	}

	return categories, nil
}
