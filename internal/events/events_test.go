package events

import (
	"context"
	"errors"
	"helpmatch/pkg/types"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratedApplication() *types.RatedApplication {
	return &types.RatedApplication{
		Application: &types.Application{ID: 9, RequestID: 4, UserID: "vol"},
		RatedUserID: "vol",
		RatedRole:   types.RoleVolunteer,
		Rating:      5,
	}
}

func TestNewRatingRecorded(t *testing.T) {
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	event := NewRatingRecorded(ratedApplication(), at)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, int64(4), event.RequestID)
	assert.Equal(t, int64(9), event.ApplicationID)
	assert.Equal(t, "vol", event.RatedUserID)
	assert.Equal(t, types.RoleVolunteer, event.RatedRole)
	assert.Equal(t, 5, event.Rating)
	assert.Equal(t, time.UTC, event.RecordedAt.Location())
}

func TestDecodeRatingRecorded(t *testing.T) {
	event, err := decodeRatingRecorded(`{"id":"e1","request_id":4,"rated_user_id":"u","rated_role":"help_seeker","rating":2}`)
	require.NoError(t, err)
	assert.Equal(t, types.RoleHelpSeeker, event.RatedRole)
	assert.Equal(t, 2, event.Rating)

	_, err = decodeRatingRecorded(`{"id":"e1"}`)
	assert.Error(t, err)

	_, err = decodeRatingRecorded(`not json`)
	assert.Error(t, err)
}

func TestDirectInvokesHandler(t *testing.T) {
	var got *RatingRecorded
	d := NewDirect(func(_ context.Context, e *RatingRecorded) error {
		got = e
		return nil
	})

	event := NewRatingRecorded(ratedApplication(), time.Now())
	require.NoError(t, d.PublishRating(context.Background(), event))
	assert.Same(t, event, got)

	boom := errors.New("boom")
	d = NewDirect(func(context.Context, *RatingRecorded) error { return boom })
	assert.ErrorIs(t, d.PublishRating(context.Background(), event), boom)

	assert.NoError(t, NewDirect(nil).PublishRating(context.Background(), event))
}

func TestRedisPublishSubscribe(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	logger, _ := test.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *RatingRecorded, 1)
	done := make(chan error, 1)
	go func() {
		done <- Subscribe(ctx, rdb, "ratings", func(_ context.Context, e *RatingRecorded) error {
			received <- e
			return nil
		}, logger)
	}()

	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("ratings")) == 1
	}, time.Second, 10*time.Millisecond)

	p := NewRedisPublisher(rdb, "ratings")
	require.NoError(t, rdb.Publish(ctx, "ratings", "garbage").Err())

	event := NewRatingRecorded(ratedApplication(), time.Now())
	require.NoError(t, p.PublishRating(ctx, event))

	select {
	case got := <-received:
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, event.RatedUserID, got.RatedUserID)
		assert.Equal(t, event.Rating, got.Rating)
	case <-time.After(2 * time.Second):
		t.Fatal("rating event was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop")
	}
}
