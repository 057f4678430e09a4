package resolution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
	"github.com/socvr/chatbot-go/pkg/store/memdb"
)

var (
	now        = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	thresholds = eligibility.Thresholds{
		ReputationToJoinReviewers: 3000,
		ReviewWindowDays:          30,
		ReviewsRequired:           3,
		MinReviewerTenureDays:     30,
	}
)

const (
	actorID     = 1
	requesterID = 42
	outsiderID  = 99
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAuditor) Log(e audit.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) last() audit.ResolveEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1].(audit.ResolveEvent)
}

type fixture struct {
	store    *memdb.Store
	resolver *Resolver
	room     *chat.RecordingRoom
	auditor  *recordingAuditor
}

type fixtureOptions struct {
	actorReviews    int
	actorTenureDays int
	requesterRep    int
	requesterGroups []model.Group
	requestGroup    model.Group
	requestAccepted *bool
}

func defaultOptions() fixtureOptions {
	return fixtureOptions{
		actorReviews:    5,
		actorTenureDays: 40,
		requesterRep:    3000,
		requestGroup:    model.GroupReviewer,
	}
}

func newFixture(t *testing.T, opts fixtureOptions) *fixture {
	t.Helper()
	ctx := context.Background()

	s, err := memdb.NewStore()
	require.NoError(t, err)

	require.NoError(t, s.PutUser(ctx, store.User{
		ProfileID: actorID,
		Memberships: []store.Membership{
			{Group: model.GroupReviewer, JoinedOn: now.AddDate(0, 0, -opts.actorTenureDays)},
			{Group: model.GroupBotOwner, JoinedOn: now.AddDate(0, 0, -opts.actorTenureDays)},
		},
	}))
	for i := 0; i < opts.actorReviews; i++ {
		require.NoError(t, s.PutReviewEvent(ctx, store.ReviewEvent{UserID: actorID, ReviewedOn: now.AddDate(0, 0, -(i + 1))}))
	}

	requester := store.User{ProfileID: requesterID}
	for _, g := range opts.requesterGroups {
		requester.Memberships = append(requester.Memberships, store.Membership{Group: g, JoinedOn: now.AddDate(0, -1, 0)})
	}
	require.NoError(t, s.PutUser(ctx, requester))
	require.NoError(t, s.PutUser(ctx, store.User{ProfileID: outsiderID}))

	req := store.PermissionRequest{
		ID:               7,
		RequestingUserID: requesterID,
		RequestedGroup:   opts.requestGroup,
		Accepted:         opts.requestAccepted,
		CreatedOn:        now.Add(-time.Hour),
	}
	if opts.requestAccepted != nil {
		req.ReviewingUserID = intPtr(actorID)
	}
	_, err = s.PutRequest(ctx, req)
	require.NoError(t, err)

	room := chat.NewRecordingRoom(
		chat.User{ProfileID: actorID, Name: "Alice Reviewer", Reputation: 20000},
		chat.User{ProfileID: requesterID, Name: "Bob Newcomer", Reputation: opts.requesterRep},
	)
	auditor := &recordingAuditor{}
	resolver := New(s, eligibility.New(thresholds),
		WithClock(func() time.Time { return now }),
		WithAuditor(auditor),
	)
	return &fixture{store: s, resolver: resolver, room: room, auditor: auditor}
}

func (f *fixture) resolve(actor int, outcome eligibility.Outcome) (string, error) {
	return f.resolver.Resolve(context.Background(), Input{
		RequestID:      7,
		ActorProfileID: actor,
		Outcome:        outcome,
		Directory:      f.room,
	})
}

func (f *fixture) request(t *testing.T) *store.PermissionRequest {
	t.Helper()
	req, err := f.store.FindRequestByID(context.Background(), 7)
	require.NoError(t, err)
	return req
}

func (f *fixture) requester(t *testing.T) *store.User {
	t.Helper()
	u, err := f.store.FindUserByProfileID(context.Background(), requesterID)
	require.NoError(t, err)
	return u
}

func TestResolve_ApproveReviewer(t *testing.T) {
	f := newFixture(t, defaultOptions())

	reply, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.NoError(t, err)
	assert.Equal(t, "@BobNewcomer has been added to the Reviewer group.", reply)

	req := f.request(t)
	require.True(t, req.Resolved())
	assert.True(t, *req.Accepted)
	assert.Equal(t, actorID, *req.ReviewingUserID)

	u := f.requester(t)
	m, ok := u.Membership(model.GroupReviewer)
	require.True(t, ok)
	assert.Equal(t, now, m.JoinedOn)
	assert.True(t, u.OptInToReviewTracking)
	require.NotNil(t, u.LastTrackingPreferenceChange)
	assert.Equal(t, now, *u.LastTrackingPreferenceChange)

	ev := f.auditor.last()
	assert.True(t, ev.Success)
	assert.Equal(t, "approve", ev.Operation)
	assert.Equal(t, "Reviewer", ev.Group)
}

func TestResolve_RejectCreatesNoMembership(t *testing.T) {
	f := newFixture(t, defaultOptions())

	reply, err := f.resolve(actorID, eligibility.OutcomeReject)
	require.NoError(t, err)
	assert.Equal(t, "@BobNewcomer, your request to join the Reviewer group has been rejected.", reply)

	req := f.request(t)
	require.True(t, req.Resolved())
	assert.False(t, *req.Accepted)

	u := f.requester(t)
	assert.Empty(t, u.Memberships)
	assert.False(t, u.OptInToReviewTracking)
	assert.Nil(t, u.LastTrackingPreferenceChange)
}

func TestResolve_RejectIgnoresReputation(t *testing.T) {
	opts := defaultOptions()
	opts.requesterRep = 1
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeReject)
	assert.NoError(t, err)
}

func TestResolve_ReputationBoundary(t *testing.T) {
	opts := defaultOptions()
	opts.requesterRep = 2999
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.ErrorIs(t, err, ErrEligibilityNotMet)
	failure, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, eligibility.ReasonReputation, failure.Reason)
	assert.Equal(t, "The target user needs at least 3000 rep to join the Reviewer group.", failure.Message)
	assert.False(t, f.request(t).Resolved())

	ev := f.auditor.last()
	assert.False(t, ev.Success)
	assert.Equal(t, "eligibility:reputation", ev.Reason)
}

func TestResolve_ReviewVolume(t *testing.T) {
	opts := defaultOptions()
	opts.actorReviews = 1
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.ErrorIs(t, err, ErrEligibilityNotMet)
	failure, _ := AsFailure(err)
	assert.Equal(t, eligibility.ReasonReviewVolume, failure.Reason)

	assert.False(t, f.request(t).Resolved())
	assert.Empty(t, f.requester(t).Memberships)
}

func TestResolve_Tenure(t *testing.T) {
	opts := defaultOptions()
	opts.actorTenureDays = 10
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeReject)
	require.ErrorIs(t, err, ErrEligibilityNotMet)
	failure, _ := AsFailure(err)
	assert.Equal(t, eligibility.ReasonTenure, failure.Reason)
	assert.Equal(t, "You need to be in the Reviewer group for at least 30 days before you can process requests for this group.", failure.Message)
}

func TestResolve_BotOwnerPrerequisite(t *testing.T) {
	opts := defaultOptions()
	opts.requestGroup = model.GroupBotOwner
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.ErrorIs(t, err, ErrEligibilityNotMet)
	failure, _ := AsFailure(err)
	assert.Equal(t, eligibility.ReasonPrerequisiteGroup, failure.Reason)
	assert.False(t, f.request(t).Resolved())
}

func TestResolve_BotOwnerApproveLeavesTrackingUntouched(t *testing.T) {
	opts := defaultOptions()
	opts.requestGroup = model.GroupBotOwner
	opts.requesterGroups = []model.Group{model.GroupReviewer}
	f := newFixture(t, opts)

	reply, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.NoError(t, err)
	assert.Equal(t, "@BobNewcomer has been added to the BotOwner group.", reply)

	u := f.requester(t)
	assert.True(t, u.InGroup(model.GroupBotOwner))
	assert.False(t, u.OptInToReviewTracking)
	assert.Nil(t, u.LastTrackingPreferenceChange)
}

func TestResolve_ExistingMembershipIsNotDuplicated(t *testing.T) {
	opts := defaultOptions()
	opts.requesterGroups = []model.Group{model.GroupReviewer}
	f := newFixture(t, opts)

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.NoError(t, err)

	memberships, err := f.store.ListMembershipsOf(context.Background(), requesterID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)
}

func TestResolve_InsufficientPermission(t *testing.T) {
	f := newFixture(t, defaultOptions())

	for _, actor := range []int{outsiderID, 12345} {
		_, err := f.resolve(actor, eligibility.OutcomeApprove)
		require.ErrorIs(t, err, ErrInsufficientPermission)
		assert.Equal(t, "You need to be in the Reviewer group in order to process requests for it.", err.Error())
	}
	assert.False(t, f.request(t).Resolved())
}

func TestResolve_RequestNotFound(t *testing.T) {
	f := newFixture(t, defaultOptions())

	_, err := f.resolver.Resolve(context.Background(), Input{RequestID: 8, ActorProfileID: actorID, Directory: f.room})
	require.ErrorIs(t, err, ErrRequestNotFound)
	assert.Equal(t, "I can't find that permission request. Run `view requests` to see the current list.", err.Error())
	assert.Equal(t, "request-not-found", f.auditor.last().Reason)
}

func TestResolve_AlreadyProcessed(t *testing.T) {
	for _, accepted := range []bool{true, false} {
		for _, outcome := range []eligibility.Outcome{eligibility.OutcomeApprove, eligibility.OutcomeReject} {
			opts := defaultOptions()
			opts.requestAccepted = &accepted
			f := newFixture(t, opts)

			_, err := f.resolve(actorID, outcome)
			require.ErrorIs(t, err, ErrAlreadyProcessed)
			assert.Equal(t, accepted, *f.request(t).Accepted)
		}
	}
}

func TestResolve_SecondCallIsAlreadyProcessed(t *testing.T) {
	f := newFixture(t, defaultOptions())

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	require.NoError(t, err)

	_, err = f.resolve(actorID, eligibility.OutcomeReject)
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	assert.True(t, *f.request(t).Accepted)
}

func TestResolve_Concurrent(t *testing.T) {
	f := newFixture(t, defaultOptions())

	const callers = 8
	results := make(chan error, callers)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < callers; i++ {
		go func() {
			start.Wait()
			_, err := f.resolve(actorID, eligibility.OutcomeApprove)
			results <- err
		}()
	}
	start.Done()

	succeeded := 0
	for i := 0; i < callers; i++ {
		err := <-results
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	}
	assert.Equal(t, 1, succeeded)

	memberships, err := f.store.ListMembershipsOf(context.Background(), requesterID)
	require.NoError(t, err)
	assert.Len(t, memberships, 1)
}

func TestResolve_RequesterLookup(t *testing.T) {
	t.Run("reputation unavailable is an infrastructure error", func(t *testing.T) {
		f := newFixture(t, defaultOptions())
		f.room = chat.NewRecordingRoom()

		_, err := f.resolve(actorID, eligibility.OutcomeApprove)
		require.Error(t, err)
		_, isFailure := AsFailure(err)
		assert.False(t, isFailure)
		assert.ErrorIs(t, err, chat.ErrUnknownUser)
		assert.False(t, f.request(t).Resolved())
	})

	t.Run("name falls back to the profile id", func(t *testing.T) {
		f := newFixture(t, defaultOptions())
		f.room = chat.NewRecordingRoom()

		reply, err := f.resolve(actorID, eligibility.OutcomeReject)
		require.NoError(t, err)
		assert.Equal(t, "@42, your request to join the Reviewer group has been rejected.", reply)
	})
}

func TestResolve_SetEngine(t *testing.T) {
	f := newFixture(t, defaultOptions())

	stricter := thresholds
	stricter.ReviewsRequired = 10
	f.resolver.SetEngine(eligibility.New(stricter))
	assert.Equal(t, 10, f.resolver.Engine().Thresholds().ReviewsRequired)

	_, err := f.resolve(actorID, eligibility.OutcomeApprove)
	assert.ErrorIs(t, err, ErrEligibilityNotMet)
}

func TestFailure_Is(t *testing.T) {
	err := fmtWrap(alreadyProcessed())
	assert.True(t, errors.Is(err, ErrAlreadyProcessed))
	assert.False(t, errors.Is(err, ErrRequestNotFound))

	var nm *eligibility.NotMetError
	wrapped := notMet(&eligibility.NotMetError{Reason: eligibility.ReasonTenure})
	assert.True(t, errors.As(wrapped, &nm))
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("context"), err)
}

func intPtr(i int) *int {
	return &i
}
