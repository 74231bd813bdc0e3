package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisPublisher publishes events on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) PublishRating(ctx context.Context, event *RatingRecorded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode rating event: %w", err)
	}

	if err := p.rdb.Publish(ctx, p.channel, string(payload)).Err(); err != nil {
		return fmt.Errorf("publish rating event: %w", err)
	}

	return nil
}

// Subscribe delivers every event published on channel to handler until ctx
// is cancelled. Undecodable payloads and handler failures are logged and
// skipped.
func Subscribe(ctx context.Context, rdb *redis.Client, channel string, handler Handler, logger logrus.FieldLogger) error {
	sub := rdb.Subscribe(ctx, channel)
	defer func() {
		_ = sub.Close()
	}()

	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	logger.WithField("channel", channel).Info("subscribed to rating events")

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			event, err := decodeRatingRecorded(msg.Payload)
			if err != nil {
				logger.WithError(err).Warn("dropping malformed rating event")
				continue
			}

			entry := logger.WithFields(logrus.Fields{
				"event_id":      event.ID,
				"rated_user_id": event.RatedUserID,
				"rated_role":    event.RatedRole,
			})

			if err := handler(ctx, event); err != nil {
				entry.WithError(err).Error("failed to handle rating event")
				continue
			}

			entry.Debug("handled rating event")
		}
	}
}
