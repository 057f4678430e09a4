package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// Ensure Store implements store.Seeder
var _ store.Seeder = (*Store)(nil)

// Ensure tx implements store.Tx
var _ store.Tx = (*tx)(nil)

// Store implements store.Store in memory
type Store struct {
	db *memdb.MemDB

	nextRequestID atomic.Int64
	nextReviewID  atomic.Int64
}

// NewStore creates an empty Store
func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) read() reader {
	return reader{txn: s.db.Txn(false)}
}

func (s *Store) FindUserByProfileID(ctx context.Context, profileID int) (*store.User, error) {
	return s.read().FindUserByProfileID(ctx, profileID)
}

func (s *Store) FindRequestByID(ctx context.Context, id int) (*store.PermissionRequest, error) {
	return s.read().FindRequestByID(ctx, id)
}

func (s *Store) ListMembershipsOf(ctx context.Context, profileID int) ([]store.Membership, error) {
	return s.read().ListMembershipsOf(ctx, profileID)
}

func (s *Store) ListReviewEventsOf(ctx context.Context, profileID int, since time.Time) ([]store.ReviewEvent, error) {
	return s.read().ListReviewEventsOf(ctx, profileID, since)
}

func (s *Store) ListPendingRequests(ctx context.Context) ([]store.PermissionRequest, error) {
	return s.read().ListPendingRequests(ctx)
}

// Transaction runs fn in a write transaction. Write transactions are
// serialized; fn sees its own writes and nothing else until it returns.
func (s *Store) Transaction(ctx context.Context, fn func(store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := fn(&tx{reader: reader{txn: txn}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

type reader struct {
	txn *memdb.Txn
}

func (r reader) FindUserByProfileID(_ context.Context, profileID int) (*store.User, error) {
	raw, err := r.txn.First(tableUsers, indexID, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", profileID, err)
	}
	if raw == nil {
		return nil, store.ErrUserNotFound
	}
	rec := raw.(*userRecord)

	memberships, err := r.memberships(profileID)
	if err != nil {
		return nil, err
	}
	return &store.User{
		ProfileID:                    rec.ProfileID,
		OptInToReviewTracking:        rec.OptInToReviewTracking,
		LastTrackingPreferenceChange: rec.LastTrackingPreferenceChange,
		Memberships:                  memberships,
	}, nil
}

func (r reader) FindRequestByID(ctx context.Context, id int) (*store.PermissionRequest, error) {
	raw, err := r.txn.First(tableRequests, indexID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permission request %d: %w", id, err)
	}
	if raw == nil {
		return nil, store.ErrRequestNotFound
	}

	request, err := toRequest(raw.(*requestRecord))
	if err != nil {
		return nil, err
	}
	user, err := r.FindUserByProfileID(ctx, request.RequestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requesting user of request %d: %w", id, err)
	}
	request.RequestingUser = *user
	return &request, nil
}

func (r reader) ListMembershipsOf(_ context.Context, profileID int) ([]store.Membership, error) {
	return r.memberships(profileID)
}

func (r reader) memberships(profileID int) ([]store.Membership, error) {
	it, err := r.txn.Get(tableMemberships, indexUser, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships of user %d: %w", profileID, err)
	}

	memberships := []store.Membership{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*membershipRecord)
		group, err := model.GroupString(rec.Group)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, store.Membership{
			UserID:   rec.UserID,
			Group:    group,
			JoinedOn: rec.JoinedOn,
		})
	}
	sort.SliceStable(memberships, func(i, j int) bool {
		return memberships[i].JoinedOn.Before(memberships[j].JoinedOn)
	})
	return memberships, nil
}

func (r reader) ListReviewEventsOf(_ context.Context, profileID int, since time.Time) ([]store.ReviewEvent, error) {
	it, err := r.txn.Get(tableReviews, indexReviewer, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews of user %d: %w", profileID, err)
	}

	events := []store.ReviewEvent{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*reviewRecord)
		if !rec.ReviewedOn.After(since) {
			continue
		}
		events = append(events, store.ReviewEvent{UserID: rec.ReviewerID, ReviewedOn: rec.ReviewedOn})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].ReviewedOn.After(events[j].ReviewedOn)
	})
	return events, nil
}

func (r reader) ListPendingRequests(_ context.Context) ([]store.PermissionRequest, error) {
	it, err := r.txn.Get(tableRequests, indexPending, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	requests := []store.PermissionRequest{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		request, err := toRequest(raw.(*requestRecord))
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	sort.SliceStable(requests, func(i, j int) bool {
		if requests[i].CreatedOn.Equal(requests[j].CreatedOn) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedOn.Before(requests[j].CreatedOn)
	})
	return requests, nil
}

type tx struct {
	reader
}

func (t *tx) ResolveRequest(_ context.Context, id, reviewingUserID int, accepted bool) error {
	raw, err := t.txn.First(tableRequests, indexID, id)
	if err != nil {
		return fmt.Errorf("failed to fetch permission request %d: %w", id, err)
	}
	if raw == nil {
		return store.ErrRequestNotFound
	}
	current := raw.(*requestRecord)
	if current.Accepted != nil {
		return store.ErrAlreadyResolved
	}

	updated := *current
	updated.ReviewingUserID = &reviewingUserID
	updated.Accepted = &accepted
	if err := t.txn.Insert(tableRequests, &updated); err != nil {
		return fmt.Errorf("failed to resolve permission request %d: %w", id, err)
	}
	return nil
}

func (t *tx) AddMembership(_ context.Context, m store.Membership) error {
	return insertMembership(t.txn, m)
}

func (t *tx) SetReviewTracking(_ context.Context, profileID int, optIn bool, changedAt time.Time) error {
	raw, err := t.txn.First(tableUsers, indexID, profileID)
	if err != nil {
		return fmt.Errorf("failed to fetch user %d: %w", profileID, err)
	}
	if raw == nil {
		return store.ErrUserNotFound
	}

	updated := *raw.(*userRecord)
	updated.OptInToReviewTracking = optIn
	updated.LastTrackingPreferenceChange = &changedAt
	if err := t.txn.Insert(tableUsers, &updated); err != nil {
		return fmt.Errorf("failed to update review tracking for user %d: %w", profileID, err)
	}
	return nil
}

func insertMembership(txn *memdb.Txn, m store.Membership) error {
	existing, err := txn.First(tableMemberships, indexID, m.UserID, m.Group.String())
	if err != nil {
		return fmt.Errorf("failed to fetch %s membership for user %d: %w", m.Group, m.UserID, err)
	}
	if existing != nil {
		return nil
	}

	rec := &membershipRecord{UserID: m.UserID, Group: m.Group.String(), JoinedOn: m.JoinedOn}
	if err := txn.Insert(tableMemberships, rec); err != nil {
		return fmt.Errorf("failed to add %s membership for user %d: %w", m.Group, m.UserID, err)
	}
	return nil
}

func toRequest(rec *requestRecord) (store.PermissionRequest, error) {
	group, err := model.GroupString(rec.Group)
	if err != nil {
		return store.PermissionRequest{}, fmt.Errorf("permission request %d: %w", rec.ID, err)
	}
	return store.PermissionRequest{
		ID:               rec.ID,
		RequestingUserID: rec.RequestingUserID,
		RequestingUser:   store.User{ProfileID: rec.RequestingUserID},
		RequestedGroup:   group,
		ReviewingUserID:  rec.ReviewingUserID,
		Accepted:         rec.Accepted,
		CreatedOn:        rec.CreatedOn,
	}, nil
}
