package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
)

// PutUser creates or updates a user together with its memberships
func (s *Store) PutUser(ctx context.Context, u store.User) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		row := model.User{
			ProfileID:                    u.ProfileID,
			OptInToReviewTracking:        u.OptInToReviewTracking,
			LastTrackingPreferenceChange: u.LastTrackingPreferenceChange,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "profile_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"opt_in_to_review_tracking", "last_tracking_preference_change"}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to create user %d: %w", u.ProfileID, err)
		}

		for _, m := range u.Memberships {
			membership := model.UserPermission{UserID: u.ProfileID, PermissionGroup: m.Group, JoinedOn: m.JoinedOn}
			err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error
			if err != nil {
				return fmt.Errorf("failed to add %s membership for user %d: %w", m.Group, u.ProfileID, err)
			}
		}
		return nil
	})
}

// PutRequest creates a permission request and returns its id
func (s *Store) PutRequest(ctx context.Context, r store.PermissionRequest) (int, error) {
	row := model.PermissionRequest{
		ID:                       r.ID,
		RequestingUserID:         r.RequestingUserID,
		RequestedPermissionGroup: r.RequestedGroup,
		ReviewingUserID:          r.ReviewingUserID,
		Accepted:                 r.Accepted,
		CreatedOn:                r.CreatedOn,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to create permission request: %w", err)
	}
	if r.ID != 0 {
		// explicit ids bypass the serial sequence
		err := s.db.WithContext(ctx).Exec(`
			SELECT setval(pg_get_serial_sequence('permission_requests', 'id'), (SELECT MAX(id) FROM permission_requests))
		`).Error
		if err != nil {
			return 0, fmt.Errorf("failed to advance permission request sequence: %w", err)
		}
	}
	return row.ID, nil
}

// PutReviewEvent logs a review for a user
func (s *Store) PutReviewEvent(ctx context.Context, e store.ReviewEvent) error {
	row := model.ReviewedItem{ReviewerID: e.UserID, ReviewedOn: e.ReviewedOn}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to log review for user %d: %w", e.UserID, err)
	}
	return nil
}
