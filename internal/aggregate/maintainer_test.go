package aggregate

import (
	"context"
	"errors"
	"helpmatch/internal/events"
	"helpmatch/pkg/types"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	calls []string
	err   error
}

func (f *fakeUsers) RecomputeAverageRating(_ context.Context, userID string, role types.Role) (float64, error) {
	f.calls = append(f.calls, userID+"/"+string(role))
	return 4.5, f.err
}

func TestHandleRatingRecomputesRatedUser(t *testing.T) {
	users := &fakeUsers{}
	logger, hook := test.NewNullLogger()
	m := NewMaintainer(users, logger)

	err := m.HandleRating(context.Background(), &events.RatingRecorded{RatedUserID: "seeker", RatedRole: types.RoleHelpSeeker})
	require.NoError(t, err)

	assert.Equal(t, []string{"seeker/help_seeker"}, users.calls)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, 4.5, hook.LastEntry().Data["avg_rating"])
}

func TestHandleRatingReturnsStoreErrors(t *testing.T) {
	users := &fakeUsers{err: errors.New("down")}
	logger, hook := test.NewNullLogger()
	m := NewMaintainer(users, logger)

	err := m.HandleRating(context.Background(), &events.RatingRecorded{RatedUserID: "vol", RatedRole: types.RoleVolunteer})
	assert.EqualError(t, err, "down")
	assert.Empty(t, hook.AllEntries())
}
