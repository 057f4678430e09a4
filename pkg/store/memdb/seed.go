package memdb

import (
	"context"
	"fmt"
	"time"

	"github.com/socvr/chatbot-go/pkg/store"
)

// PutUser creates or replaces a user and adds its memberships
func (s *Store) PutUser(_ context.Context, u store.User) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	rec := &userRecord{
		ProfileID:                    u.ProfileID,
		OptInToReviewTracking:        u.OptInToReviewTracking,
		LastTrackingPreferenceChange: u.LastTrackingPreferenceChange,
	}
	if err := txn.Insert(tableUsers, rec); err != nil {
		return fmt.Errorf("failed to create user %d: %w", u.ProfileID, err)
	}
	for _, m := range u.Memberships {
		m.UserID = u.ProfileID
		if err := insertMembership(txn, m); err != nil {
			return err
		}
	}

	txn.Commit()
	return nil
}

// PutRequest stores a permission request. The requesting user must exist.
func (s *Store) PutRequest(_ context.Context, r store.PermissionRequest) (int, error) {
	txn := s.db.Txn(true)
	defer txn.Abort()

	user, err := txn.First(tableUsers, indexID, r.RequestingUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch user %d: %w", r.RequestingUserID, err)
	}
	if user == nil {
		return 0, fmt.Errorf("failed to create permission request: %w", store.ErrUserNotFound)
	}

	id := r.ID
	if id == 0 {
		id = int(s.nextRequestID.Add(1))
	} else {
		for {
			// keep generated ids ahead of explicit ones
			cur := s.nextRequestID.Load()
			if int64(id) <= cur || s.nextRequestID.CompareAndSwap(cur, int64(id)) {
				break
			}
		}
	}

	created := r.CreatedOn
	if created.IsZero() {
		created = time.Now().UTC()
	}
	rec := &requestRecord{
		ID:               id,
		RequestingUserID: r.RequestingUserID,
		Group:            r.RequestedGroup.String(),
		ReviewingUserID:  r.ReviewingUserID,
		Accepted:         r.Accepted,
		CreatedOn:        created,
	}
	if err := txn.Insert(tableRequests, rec); err != nil {
		return 0, fmt.Errorf("failed to create permission request: %w", err)
	}

	txn.Commit()
	return id, nil
}

// PutReviewEvent logs a review for a user
func (s *Store) PutReviewEvent(_ context.Context, e store.ReviewEvent) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	rec := &reviewRecord{
		ID:         int(s.nextReviewID.Add(1)),
		ReviewerID: e.UserID,
		ReviewedOn: e.ReviewedOn,
	}
	if err := txn.Insert(tableReviews, rec); err != nil {
		return fmt.Errorf("failed to log review for user %d: %w", e.UserID, err)
	}

	txn.Commit()
	return nil
}
