package matching

import (
	"context"
	"helpmatch/internal/events"
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"
	"time"

	"github.com/sirupsen/logrus"
)

type RatingService struct {
	store     RatingStore
	publisher events.Publisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewRatingService builds the rating workflow. A nil publisher drops
// RatingRecorded events.
func NewRatingService(store RatingStore, publisher events.Publisher, logger logrus.FieldLogger) *RatingService {
	return &RatingService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// RateVolunteer records the help-seeker's score of the accepted volunteer.
func (s *RatingService) RateVolunteer(ctx context.Context, actor *identity.Actor, requestID int64, rating int) (app *types.Application, err error) {
	defer func() {
		observe(s.logger, "rate_volunteer", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleHelpSeeker); err != nil {
		return nil, err
	}

	if err := types.ValidateRating(rating); err != nil {
		return nil, err
	}

	rated, err := s.store.RateVolunteer(ctx, actor.ID, requestID, rating)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, rated)

	return rated.Application, nil
}

// RateSeeker records the accepted volunteer's score of the help-seeker.
func (s *RatingService) RateSeeker(ctx context.Context, actor *identity.Actor, requestID int64, rating int) (app *types.Application, err error) {
	defer func() {
		observe(s.logger, "rate_seeker", actor, logrus.Fields{"request_id": requestID}, err)
	}()

	if err := identity.Authorize(actor, types.RoleVolunteer); err != nil {
		return nil, err
	}

	if err := types.ValidateRating(rating); err != nil {
		return nil, err
	}

	rated, err := s.store.RateSeeker(ctx, actor.ID, requestID, rating)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, rated)

	return rated.Application, nil
}

// publish runs after the rating has committed, so a failure here is logged
// and never returned.
func (s *RatingService) publish(ctx context.Context, rated *types.RatedApplication) {
	if s.publisher == nil {
		return
	}

	event := events.NewRatingRecorded(rated, s.now())

	entry := s.logger.WithFields(logrus.Fields{
		"event_id":      event.ID,
		"request_id":    event.RequestID,
		"rated_user_id": event.RatedUserID,
		"rated_role":    event.RatedRole,
	})

	// The rating is already committed; a caller hanging up must not drop the event.
	if err := s.publisher.PublishRating(context.WithoutCancel(ctx), event); err != nil {
		entry.WithError(err).Warn("failed to publish rating event")
		return
	}

	entry.Info("rating recorded")
}
