package gorm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/socvr/chatbot-go/pkg/store"
)

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)

// Ensure Store implements store.Seeder
var _ store.Seeder = (*Store)(nil)

// Ensure tx implements store.Tx
var _ store.Tx = (*tx)(nil)

// Store implements store.Store using GORM
type Store struct {
	queries
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) *Store {
	return &Store{queries: queries{db: db}}
}

// DB returns the underlying connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(store.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&tx{queries: queries{db: db, forUpdate: true}})
	})
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

type tx struct {
	queries
}

// ResolveRequest records the resolution of an unresolved request.
func (t *tx) ResolveRequest(ctx context.Context, id, reviewingUserID int, accepted bool) error {
	res := t.db.WithContext(ctx).Exec(`
		UPDATE permission_requests
		SET reviewing_user_id = ?, accepted = ?
		WHERE id = ? AND accepted IS NULL
	`, reviewingUserID, accepted, id)
	if res.Error != nil {
		return fmt.Errorf("failed to resolve permission request %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrAlreadyResolved
	}
	return nil
}

// AddMembership grants a membership
func (t *tx) AddMembership(ctx context.Context, m store.Membership) error {
	return addMembership(t.db.WithContext(ctx), m)
}

// SetReviewTracking updates a user's review tracking preference
func (t *tx) SetReviewTracking(ctx context.Context, profileID int, optIn bool, changedAt time.Time) error {
	res := t.db.WithContext(ctx).Exec(`
		UPDATE users
		SET opt_in_to_review_tracking = ?, last_tracking_preference_change = ?
		WHERE profile_id = ?
	`, optIn, changedAt, profileID)
	if res.Error != nil {
		return fmt.Errorf("failed to update review tracking for user %d: %w", profileID, res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func addMembership(db *gorm.DB, m store.Membership) error {
	err := db.Exec(`
		INSERT INTO user_permissions (user_id, permission_group, joined_on)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, permission_group) DO NOTHING
	`, m.UserID, m.Group.String(), m.JoinedOn).Error
	if err != nil {
		return fmt.Errorf("failed to add %s membership for user %d: %w", m.Group, m.UserID, err)
	}
	return nil
}
