package resolution

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/chat"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
)

// UserDirectory resolves chat profiles. chat.Room satisfies it.
type UserDirectory interface {
	LookupUser(ctx context.Context, profileID int) (chat.User, error)
}

// Input identifies a resolution attempt
type Input struct {
	RequestID      int
	ActorProfileID int
	Outcome        eligibility.Outcome
	// Directory supplies the requester's display name and reputation.
	// May be nil when neither is needed.
	Directory UserDirectory
	// RoomID is recorded in audit events
	RoomID int
}

// Resolver applies approve and reject decisions to permission requests.
// It is safe for concurrent use.
type Resolver struct {
	store   store.Store
	engine  atomic.Pointer[eligibility.Engine]
	now     func() time.Time
	log     *zap.Logger
	auditor audit.Auditor
}

// Option configures a Resolver
type Option func(*Resolver)

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the structured logger
func WithLogger(log *zap.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithAuditor sets where resolution attempts are recorded
func WithAuditor(a audit.Auditor) Option {
	return func(r *Resolver) { r.auditor = a }
}

// New creates a Resolver
func New(s store.Store, engine *eligibility.Engine, opts ...Option) *Resolver {
	r := &Resolver{
		store:   s,
		now:     time.Now,
		log:     zap.NewNop(),
		auditor: audit.Discard,
	}
	r.engine.Store(engine)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetEngine replaces the rule engine used by subsequent calls
func (r *Resolver) SetEngine(e *eligibility.Engine) {
	r.engine.Store(e)
}

// Engine returns the current rule engine
func (r *Resolver) Engine() *eligibility.Engine {
	return r.engine.Load()
}

// Resolve approves or rejects a request and returns the reply to post.
// Business failures are returned as *Failure.
func (r *Resolver) Resolve(ctx context.Context, in Input) (string, error) {
	log := r.log.With(
		zap.Int("request_id", in.RequestID),
		zap.Int("actor", in.ActorProfileID),
		zap.Stringer("outcome", in.Outcome),
	)

	reply, group, err := r.resolve(ctx, in)

	event := audit.ResolveEvent{
		ActorID:   in.ActorProfileID,
		RoomID:    in.RoomID,
		RequestID: in.RequestID,
		Operation: strings.ToLower(in.Outcome.String()),
		Success:   err == nil,
	}
	if group != nil {
		event.Group = group.String()
	}

	if f, ok := AsFailure(err); ok {
		event.Reason = f.auditReason()
		event.ErrorMessage = f.Message
		r.auditor.Log(event)
		log.Info("resolution refused", zap.String("reason", event.Reason))
		return "", f
	}
	if err != nil {
		log.Error("resolution failed", zap.Error(err))
		return "", err
	}

	r.auditor.Log(event)
	log.Info("request resolved", zap.String("group", event.Group))
	return reply, nil
}

func (r *Resolver) resolve(ctx context.Context, in Input) (string, *model.Group, error) {
	engine := r.engine.Load()
	now := r.now()

	snapshot, err := r.store.FindRequestByID(ctx, in.RequestID)
	if errors.Is(err, store.ErrRequestNotFound) {
		return "", nil, requestNotFound()
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up request %d: %w", in.RequestID, err)
	}
	group := snapshot.RequestedGroup

	if snapshot.Resolved() {
		return "", &group, alreadyProcessed()
	}

	actor, err := r.store.FindUserByProfileID(ctx, in.ActorProfileID)
	if err != nil && !errors.Is(err, store.ErrUserNotFound) {
		return "", &group, fmt.Errorf("failed to look up user %d: %w", in.ActorProfileID, err)
	}
	if actor == nil || !actor.InGroup(group) {
		return "", &group, insufficientPermission(group)
	}

	requester, err := r.lookupRequester(ctx, in, snapshot.RequestingUserID, engine.NeedsRequesterReputation(group, in.Outcome))
	if err != nil {
		return "", &group, err
	}

	err = r.store.Transaction(ctx, func(tx store.Tx) error {
		return r.apply(ctx, tx, engine, in, requester, now)
	})
	if err != nil {
		return "", &group, err
	}

	return successMessage(requester.Name, group, in.Outcome), &group, nil
}

// lookupRequester fetches the requester's chat profile. A failed lookup is
// only an error when the reputation is needed; otherwise the profile id
// stands in for the name.
func (r *Resolver) lookupRequester(ctx context.Context, in Input, profileID int, needReputation bool) (chat.User, error) {
	fallback := chat.User{ProfileID: profileID, Name: strconv.Itoa(profileID)}
	if in.Directory == nil {
		if needReputation {
			return chat.User{}, fmt.Errorf("no user directory to look up reputation of user %d", profileID)
		}
		return fallback, nil
	}

	u, err := in.Directory.LookupUser(ctx, profileID)
	if err != nil {
		if needReputation {
			return chat.User{}, fmt.Errorf("failed to look up reputation of user %d: %w", profileID, err)
		}
		r.log.Debug("requester lookup failed", zap.Int("profile_id", profileID), zap.Error(err))
		return fallback, nil
	}
	if u.Name == "" {
		u.Name = fallback.Name
	}
	return u, nil
}

// apply re-runs every check on locked data and writes the decision
func (r *Resolver) apply(ctx context.Context, tx store.Tx, engine *eligibility.Engine, in Input, requester chat.User, now time.Time) error {
	req, err := tx.FindRequestByID(ctx, in.RequestID)
	if errors.Is(err, store.ErrRequestNotFound) {
		return requestNotFound()
	}
	if err != nil {
		return fmt.Errorf("failed to lock request %d: %w", in.RequestID, err)
	}
	if req.Resolved() {
		return alreadyProcessed()
	}
	group := req.RequestedGroup

	actor, err := tx.FindUserByProfileID(ctx, in.ActorProfileID)
	if errors.Is(err, store.ErrUserNotFound) {
		return insufficientPermission(group)
	}
	if err != nil {
		return fmt.Errorf("failed to look up user %d: %w", in.ActorProfileID, err)
	}
	if !actor.InGroup(group) {
		return insufficientPermission(group)
	}

	check := eligibility.Input{
		Group:               group,
		Outcome:             in.Outcome,
		RequesterReputation: requester.Reputation,
		RequesterGroups:     req.RequestingUser.Groups(),
		ActorMemberships:    make(map[model.Group]time.Time, len(actor.Memberships)),
		Now:                 now,
	}
	for _, m := range actor.Memberships {
		check.ActorMemberships[m.Group] = m.JoinedOn
	}
	if group == model.GroupReviewer {
		reviews, err := tx.ListReviewEventsOf(ctx, in.ActorProfileID, engine.ReviewWindowStart(now))
		if err != nil {
			return fmt.Errorf("failed to list reviews of user %d: %w", in.ActorProfileID, err)
		}
		for _, rv := range reviews {
			check.ActorReviews = append(check.ActorReviews, rv.ReviewedOn)
		}
	}

	if err := engine.Check(check); err != nil {
		var nm *eligibility.NotMetError
		if errors.As(err, &nm) {
			return notMet(nm)
		}
		return err
	}

	accepted := in.Outcome == eligibility.OutcomeApprove
	err = tx.ResolveRequest(ctx, req.ID, in.ActorProfileID, accepted)
	if errors.Is(err, store.ErrAlreadyResolved) {
		return alreadyProcessed()
	}
	if err != nil {
		return err
	}
	if !accepted {
		return nil
	}

	if !req.RequestingUser.InGroup(group) {
		err := tx.AddMembership(ctx, store.Membership{
			UserID:   req.RequestingUserID,
			Group:    group,
			JoinedOn: now,
		})
		if err != nil {
			return err
		}
	}
	if group == model.GroupReviewer {
		if err := tx.SetReviewTracking(ctx, req.RequestingUserID, true, now); err != nil {
			return err
		}
	}
	return nil
}
