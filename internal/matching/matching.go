// Package matching holds the role-checked operations of the marketplace:
// request lifecycle, applications, ratings and listings. Every operation
// authorizes its actor before touching a store.
package matching

import (
	"context"
	"helpmatch/internal/identity"
	"helpmatch/internal/metrics"
	"helpmatch/pkg/types"

	"github.com/sirupsen/logrus"
)

type RequestStore interface {
	CreateRequest(ctx context.Context, creatorID string, in *types.RequestInput) (*types.Request, error)
	UpdateRequest(ctx context.Context, creatorID string, requestID int64, in *types.RequestInput) (*types.Request, error)
	DeleteRequest(ctx context.Context, creatorID string, requestID int64) error
	CompleteRequest(ctx context.Context, creatorID string, requestID int64) (*types.Request, error)
	RequestForHelpSeeker(ctx context.Context, creatorID string, requestID int64) (*types.HelpSeekerRequestDetail, error)
	RequestForVolunteer(ctx context.Context, volunteerID string, requestID int64) (*types.VolunteerRequest, error)
}

type ApplicationStore interface {
	Apply(ctx context.Context, volunteerID string, requestID int64) (*types.Application, error)
	Withdraw(ctx context.Context, volunteerID string, requestID int64) error
	Accept(ctx context.Context, creatorID string, requestID int64, volunteerID string) (*types.Application, error)
}

type RatingStore interface {
	RateVolunteer(ctx context.Context, creatorID string, requestID int64, rating int) (*types.RatedApplication, error)
	RateSeeker(ctx context.Context, volunteerID string, requestID int64, rating int) (*types.RatedApplication, error)
}

type QueryStore interface {
	MyRequests(ctx context.Context, creatorID string, f *types.MyRequestsFilter) (*types.Page[*types.Request], error)
	DiscoverRequests(ctx context.Context, volunteerID string, f *types.DiscoverFilter) (*types.Page[*types.VolunteerRequest], error)
}

type CategoryStore interface {
	AllCategories(ctx context.Context) ([]*types.Category, error)
}

// observe counts an operation outcome and logs failures. Domain errors are
// expected traffic and log at debug; anything else is an error.
func observe(logger logrus.FieldLogger, operation string, actor *identity.Actor, fields logrus.Fields, err error) {
	metrics.RecordOperation(operation, err)

	if err == nil {
		return
	}

	entry := logger.WithField("operation", operation).WithFields(fields)
	if actor != nil {
		entry = entry.WithField("user_id", actor.ID)
	}

	if _, ok := types.AsError(err); ok {
		entry.WithError(err).Debug("operation rejected")
		return
	}

	entry.WithError(err).Error("operation failed")
}
