// Package events carries RatingRecorded notifications from the rating
// workflow to whatever maintains aggregate ratings.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"helpmatch/internal/utils"
	"helpmatch/pkg/types"
	"time"
)

// RatingRecorded is emitted once a rating write has committed.
type RatingRecorded struct {
	ID            string     `json:"id"`
	RequestID     int64      `json:"request_id"`
	ApplicationID int64      `json:"application_id"`
	RatedUserID   string     `json:"rated_user_id"`
	RatedRole     types.Role `json:"rated_role"`
	Rating        int        `json:"rating"`
	RecordedAt    time.Time  `json:"recorded_at"`
}

func NewRatingRecorded(rated *types.RatedApplication, at time.Time) *RatingRecorded {
	return &RatingRecorded{
		ID:            utils.NanoID(),
		RequestID:     rated.Application.RequestID,
		ApplicationID: rated.Application.ID,
		RatedUserID:   rated.RatedUserID,
		RatedRole:     rated.RatedRole,
		Rating:        rated.Rating,
		RecordedAt:    at.UTC(),
	}
}

func decodeRatingRecorded(payload string) (*RatingRecorded, error) {
	var event RatingRecorded
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, fmt.Errorf("decode rating event: %w", err)
	}

	if event.RatedUserID == "" {
		return nil, fmt.Errorf("decode rating event: missing rated_user_id")
	}

	return &event, nil
}

// Handler consumes one event.
type Handler func(ctx context.Context, event *RatingRecorded) error

type Publisher interface {
	PublishRating(ctx context.Context, event *RatingRecorded) error
}

// Direct hands events to a handler in-process.
type Direct struct {
	handler Handler
}

func NewDirect(handler Handler) *Direct {
	return &Direct{handler: handler}
}

func (d *Direct) PublishRating(ctx context.Context, event *RatingRecorded) error {
	if d.handler == nil {
		return nil
	}
	return d.handler(ctx, event)
}
