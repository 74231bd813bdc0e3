package matching

import (
	"context"
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"

	"github.com/sirupsen/logrus"
)

type RequestService struct {
	store  RequestStore
	logger logrus.FieldLogger
}

func NewRequestService(store RequestStore, logger logrus.FieldLogger) *RequestService {
	return &RequestService{store: store, logger: logger}
}

func validInput(in *types.RequestInput) error {
	if in == nil {
		return types.InvalidInputf("request body is required")
	}
	return in.Validate()
}

// Create posts a new OPEN request owned by the actor.
func (s *RequestService) Create(ctx context.Context, actor *identity.Actor, in *types.RequestInput) (req *types.Request, err error) {
	defer func() {
		observe(s.logger, "create_request", actor, nil, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	if err := validInput(in); err != nil {
		return nil, err
	}

	req, err = s.store.CreateRequest(ctx, actor.ID, in)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"user_id":    actor.ID,
	}).Info("request created")

	return req, nil
}

// Update replaces the mutable fields and category set of a request that has
// no applications yet.
func (s *RequestService) Update(ctx context.Context, actor *identity.Actor, requestID int64, in *types.RequestInput) (req *types.Request, err error) {
	defer func() {
		observe(s.logger, "update_request", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	if err := validInput(in); err != nil {
		return nil, err
	}

	return s.store.UpdateRequest(ctx, actor.ID, requestID, in)
}

func (s *RequestService) Delete(ctx context.Context, actor *identity.Actor, requestID int64) (err error) {
	defer func() {
		observe(s.logger, "delete_request", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return err
	}

	if err := s.store.DeleteRequest(ctx, actor.ID, requestID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    actor.ID,
	}).Info("request deleted")

	return nil
}

// Complete marks a CLOSED request as done, which opens it for ratings.
func (s *RequestService) Complete(ctx context.Context, actor *identity.Actor, requestID int64) (req *types.Request, err error) {
	defer func() {
		observe(s.logger, "complete_request", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	return s.store.CompleteRequest(ctx, actor.ID, requestID)
}

func (s *RequestService) GetForHelpSeeker(ctx context.Context, actor *identity.Actor, requestID int64) (detail *types.HelpSeekerRequestDetail, err error) {
	defer func() {
		observe(s.logger, "get_request_help_seeker", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	return s.store.RequestForHelpSeeker(ctx, actor.ID, requestID)
}

func (s *RequestService) GetForVolunteer(ctx context.Context, actor *identity.Actor, requestID int64) (view *types.VolunteerRequest, err error) {
	defer func() {
		observe(s.logger, "get_request_volunteer", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleVolunteer); err != nil {
		return nil, err
	}

	return s.store.RequestForVolunteer(ctx, actor.ID, requestID)
}
