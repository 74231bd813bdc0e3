package matching

import (
	"context"
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"
	"strings"

	"github.com/sirupsen/logrus"
)

type ApplicationService struct {
	store  ApplicationStore
	logger logrus.FieldLogger
}

func NewApplicationService(store ApplicationStore, logger logrus.FieldLogger) *ApplicationService {
	return &ApplicationService{store: store, logger: logger}
}

func (s *ApplicationService) Apply(ctx context.Context, actor *identity.Actor, requestID int64) (app *types.Application, err error) {
	defer func() {
		observe(s.logger, "apply", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleVolunteer); err != nil {
		return nil, err
	}

	app, err = s.store.Apply(ctx, actor.ID, requestID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":     requestID,
		"application_id": app.ID,
		"user_id":        actor.ID,
	}).Info("application submitted")

	return app, nil
}

// Withdraw removes the actor's application while it is still pending.
func (s *ApplicationService) Withdraw(ctx context.Context, actor *identity.Actor, requestID int64) (err error) {
	defer func() {
		observe(s.logger, "withdraw", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleVolunteer); err != nil {
		return err
	}

	return s.store.Withdraw(ctx, actor.ID, requestID)
}

// Accept chooses volunteerID for the actor's request. Exactly one of any
// number of concurrent accepts for the same request succeeds.
func (s *ApplicationService) Accept(ctx context.Context, actor *identity.Actor, requestID int64, volunteerID string) (app *types.Application, err error) {
	defer func() {
		observe(s.logger, "accept", actor, logrus.Fields{
			"request_id":   requestID,
			"volunteer_id": volunteerID,
		}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	volunteerID = strings.TrimSpace(volunteerID)
	if volunteerID == "" {
		return nil, types.InvalidInputf("volunteer id is required")
	}

	app, err = s.store.Accept(ctx, actor.ID, requestID, volunteerID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":     requestID,
		"application_id": app.ID,
		"volunteer_id":   volunteerID,
	}).Info("application accepted")

	return app, nil
}
