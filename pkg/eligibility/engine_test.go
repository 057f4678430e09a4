package eligibility

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socvr/chatbot-go/pkg/model"
)

var (
	now      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	defaults = Thresholds{
		ReputationToJoinReviewers: 3000,
		ReviewWindowDays:          30,
		ReviewsRequired:           3,
		MinReviewerTenureDays:     30,
	}
)

func daysAgo(n ...float64) []time.Time {
	out := make([]time.Time, 0, len(n))
	for _, d := range n {
		out = append(out, now.Add(-time.Duration(d*24*float64(time.Hour))))
	}
	return out
}

func eligibleReviewerInput() Input {
	return Input{
		Group:               model.GroupReviewer,
		Outcome:             OutcomeApprove,
		RequesterReputation: 3000,
		ActorMemberships:    map[model.Group]time.Time{model.GroupReviewer: daysAgo(40)[0]},
		ActorReviews:        daysAgo(1, 2, 3, 4, 5),
		Now:                 now,
	}
}

func requireReason(t *testing.T, err error, want Reason) {
	t.Helper()
	var notMet *NotMetError
	require.True(t, errors.As(err, &notMet), "expected NotMetError, got %v", err)
	assert.Equal(t, want, notMet.Reason)
}

func TestCheck_Reviewer(t *testing.T) {
	e := New(defaults)

	tests := []struct {
		name   string
		modify func(*Input)
		reason *Reason
	}{
		{
			name:   "all rules pass",
			modify: func(*Input) {},
		},
		{
			name:   "reputation one below threshold",
			modify: func(in *Input) { in.RequesterReputation = 2999 },
			reason: reasonPtr(ReasonReputation),
		},
		{
			name:   "reputation ignored when rejecting",
			modify: func(in *Input) { in.Outcome = OutcomeReject; in.RequesterReputation = 1 },
		},
		{
			name:   "too few reviews",
			modify: func(in *Input) { in.ActorReviews = daysAgo(1) },
			reason: reasonPtr(ReasonReviewVolume),
		},
		{
			name:   "review volume applies to rejections",
			modify: func(in *Input) { in.Outcome = OutcomeReject; in.ActorReviews = nil },
			reason: reasonPtr(ReasonReviewVolume),
		},
		{
			name:   "reviews outside the window do not count",
			modify: func(in *Input) { in.ActorReviews = daysAgo(1, 2, 30, 45) },
			reason: reasonPtr(ReasonReviewVolume),
		},
		{
			name:   "reviews just inside the window count",
			modify: func(in *Input) { in.ActorReviews = daysAgo(1, 2, 29.99) },
		},
		{
			name: "tenure one day short",
			modify: func(in *Input) {
				in.ActorMemberships[model.GroupReviewer] = daysAgo(29)[0]
			},
			reason: reasonPtr(ReasonTenure),
		},
		{
			name: "tenure exactly at minimum",
			modify: func(in *Input) {
				in.ActorMemberships[model.GroupReviewer] = daysAgo(30)[0]
			},
		},
		{
			name:   "no reviewer membership",
			modify: func(in *Input) { in.ActorMemberships = nil },
			reason: reasonPtr(ReasonTenure),
		},
		{
			name: "reputation is checked first",
			modify: func(in *Input) {
				in.RequesterReputation = 0
				in.ActorReviews = nil
				in.ActorMemberships = nil
			},
			reason: reasonPtr(ReasonReputation),
		},
		{
			name: "volume is checked before tenure",
			modify: func(in *Input) {
				in.ActorReviews = nil
				in.ActorMemberships = nil
			},
			reason: reasonPtr(ReasonReviewVolume),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := eligibleReviewerInput()
			tt.modify(&in)

			err := e.Check(in)
			if tt.reason == nil {
				assert.NoError(t, err)
				return
			}
			requireReason(t, err, *tt.reason)
		})
	}
}

func TestCheck_BotOwner(t *testing.T) {
	e := New(defaults)

	err := e.Check(Input{Group: model.GroupBotOwner, Outcome: OutcomeApprove, Now: now})
	requireReason(t, err, ReasonPrerequisiteGroup)

	err = e.Check(Input{
		Group:           model.GroupBotOwner,
		Outcome:         OutcomeApprove,
		RequesterGroups: []model.Group{model.GroupReviewer},
		Now:             now,
	})
	assert.NoError(t, err)

	err = e.Check(Input{Group: model.GroupBotOwner, Outcome: OutcomeReject, Now: now})
	assert.NoError(t, err)
}

func TestCheck_UnknownGroupHasNoRules(t *testing.T) {
	assert.NoError(t, New(defaults).Check(Input{Group: model.Group(99), Outcome: OutcomeApprove}))
}

func TestNeedsRequesterReputation(t *testing.T) {
	e := New(defaults)

	assert.True(t, e.NeedsRequesterReputation(model.GroupReviewer, OutcomeApprove))
	assert.False(t, e.NeedsRequesterReputation(model.GroupReviewer, OutcomeReject))
	assert.False(t, e.NeedsRequesterReputation(model.GroupBotOwner, OutcomeApprove))
}

func TestNotMetError_Messages(t *testing.T) {
	e := New(defaults)

	assert.Equal(t,
		"The target user needs at least 3000 rep to join the Reviewer group.",
		e.notMet(ReasonReputation).Error())
	assert.Equal(t,
		"You need to have logged 3 reviews in the last 30 days before you can process requests for this group.",
		e.notMet(ReasonReviewVolume).Error())
	assert.Equal(t,
		"You need to be in the Reviewer group for at least 30 days before you can process requests for this group.",
		e.notMet(ReasonTenure).Error())
	assert.Equal(t,
		"The target user needs to be in the Reviewer group before they can join the BotOwner group.",
		e.notMet(ReasonPrerequisiteGroup).Error())
}

func TestReviewWindowStart(t *testing.T) {
	assert.Equal(t, now.AddDate(0, 0, -30), New(defaults).ReviewWindowStart(now))
}

func TestReason_String(t *testing.T) {
	assert.Equal(t, "reviewVolume", ReasonReviewVolume.String())
	r, err := ReasonString("prerequisiteGroup")
	require.NoError(t, err)
	assert.Equal(t, ReasonPrerequisiteGroup, r)
}

func reasonPtr(r Reason) *Reason {
	return &r
}
