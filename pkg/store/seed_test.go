package store_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
	"github.com/socvr/chatbot-go/pkg/store/memdb"
)

const fixture = `
users:
  - profile_id: 1
    memberships:
      - group: Reviewer
        joined_on: 2024-01-01T00:00:00Z
    reviews:
      - 2024-02-28T10:00:00Z
      - 2024-02-27T10:00:00Z
  - profile_id: 42
requests:
  - id: 7
    requesting_user_id: 42
    group: reviewer
    created_on: 2024-03-01T12:00:00Z
  - id: 8
    requesting_user_id: 42
    group: BotOwner
    accepted: false
    reviewing_user_id: 1
`

func TestLoadFixture(t *testing.T) {
	ctx := context.Background()
	s, err := memdb.NewStore()
	require.NoError(t, err)

	require.NoError(t, store.LoadFixture(ctx, s, strings.NewReader(fixture)))

	u, err := s.FindUserByProfileID(ctx, 1)
	require.NoError(t, err)
	m, ok := u.Membership(model.GroupReviewer)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), m.JoinedOn)

	reviews, err := s.ListReviewEventsOf(ctx, 1, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	pending, err := s.ListPendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 7, pending[0].ID)
	assert.Equal(t, model.GroupReviewer, pending[0].RequestedGroup)

	rejected, err := s.FindRequestByID(ctx, 8)
	require.NoError(t, err)
	assert.True(t, rejected.Resolved())
	assert.False(t, *rejected.Accepted)
}

func TestLoadFixture_Empty(t *testing.T) {
	s, err := memdb.NewStore()
	require.NoError(t, err)
	assert.NoError(t, store.LoadFixture(context.Background(), s, strings.NewReader("")))
}

func TestLoadFixture_UnknownGroup(t *testing.T) {
	s, err := memdb.NewStore()
	require.NoError(t, err)

	err = store.LoadFixture(context.Background(), s, strings.NewReader("requests:\n  - id: 1\n    group: Moderator\n"))
	assert.Error(t, err)
}

func TestUser_Groups(t *testing.T) {
	u := store.User{Memberships: []store.Membership{{Group: model.GroupReviewer}, {Group: model.GroupBotOwner}}}
	assert.Equal(t, []model.Group{model.GroupReviewer, model.GroupBotOwner}, u.Groups())
}
