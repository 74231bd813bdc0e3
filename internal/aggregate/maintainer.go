// Package aggregate keeps users.avg_rating in step with recorded ratings.
package aggregate

import (
	"context"
	"helpmatch/internal/events"
	"helpmatch/internal/metrics"
	"helpmatch/pkg/types"

	"github.com/sirupsen/logrus"
)

type RatingRecomputer interface {
	RecomputeAverageRating(ctx context.Context, userID string, role types.Role) (float64, error)
}

// Maintainer recomputes the rated user's average from scratch on every
// event, so redelivered or reordered events converge on the same value.
type Maintainer struct {
	users  RatingRecomputer
	logger logrus.FieldLogger
}

func NewMaintainer(users RatingRecomputer, logger logrus.FieldLogger) *Maintainer {
	return &Maintainer{users: users, logger: logger}
}

func (m *Maintainer) HandleRating(ctx context.Context, event *events.RatingRecorded) error {
	avg, err := m.users.RecomputeAverageRating(ctx, event.RatedUserID, event.RatedRole)
	metrics.RecordRatingEvent(err)
	if err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"user_id":    event.RatedUserID,
		"role":       event.RatedRole,
		"avg_rating": avg,
	}).Info("average rating recomputed")

	return nil
}
