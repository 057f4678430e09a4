package gorm

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/socvr/chatbot-go/pkg/model"
	"github.com/socvr/chatbot-go/pkg/store"
)

const selectRequest = `
	SELECT id, requesting_user_id, requested_permission_group, reviewing_user_id, accepted, created_on
	FROM permission_requests
`

// queries holds the read side shared by Store and tx
type queries struct {
	db *gorm.DB
	// forUpdate locks request rows read inside a transaction
	forUpdate bool
}

// FindUserByProfileID returns the user with its memberships
func (q queries) FindUserByProfileID(ctx context.Context, profileID int) (*store.User, error) {
	var rows []model.User
	err := q.db.WithContext(ctx).Raw(`
		SELECT profile_id, opt_in_to_review_tracking, last_tracking_preference_change
		FROM users
		WHERE profile_id = ?
	`, profileID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", profileID, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrUserNotFound
	}

	memberships, err := q.ListMembershipsOf(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &store.User{
		ProfileID:                    rows[0].ProfileID,
		OptInToReviewTracking:        rows[0].OptInToReviewTracking,
		LastTrackingPreferenceChange: rows[0].LastTrackingPreferenceChange,
		Memberships:                  memberships,
	}, nil
}

// FindRequestByID returns the request with its requesting user
func (q queries) FindRequestByID(ctx context.Context, id int) (*store.PermissionRequest, error) {
	query := selectRequest + ` WHERE id = ?`
	if q.forUpdate {
		query += ` FOR UPDATE`
	}

	var rows []model.PermissionRequest
	if err := q.db.WithContext(ctx).Raw(query, id).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch permission request %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrRequestNotFound
	}

	request := toRequest(rows[0])
	user, err := q.FindUserByProfileID(ctx, request.RequestingUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load requesting user of request %d: %w", id, err)
	}
	request.RequestingUser = *user
	return &request, nil
}

// ListMembershipsOf returns the memberships held by a user
func (q queries) ListMembershipsOf(ctx context.Context, profileID int) ([]store.Membership, error) {
	var rows []model.UserPermission
	err := q.db.WithContext(ctx).Raw(`
		SELECT user_id, permission_group, joined_on
		FROM user_permissions
		WHERE user_id = ?
		ORDER BY joined_on
	`, profileID).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memberships of user %d: %w", profileID, err)
	}

	memberships := make([]store.Membership, 0, len(rows))
	for _, row := range rows {
		memberships = append(memberships, store.Membership{
			UserID:   row.UserID,
			Group:    row.PermissionGroup,
			JoinedOn: row.JoinedOn,
		})
	}
	return memberships, nil
}

// ListReviewEventsOf returns the reviews logged by a user after since
func (q queries) ListReviewEventsOf(ctx context.Context, profileID int, since time.Time) ([]store.ReviewEvent, error) {
	var rows []model.ReviewedItem
	err := q.db.WithContext(ctx).Raw(`
		SELECT id, reviewer_id, reviewed_on
		FROM reviewed_items
		WHERE reviewer_id = ? AND reviewed_on > ?
		ORDER BY reviewed_on DESC
	`, profileID, since).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews of user %d: %w", profileID, err)
	}

	events := make([]store.ReviewEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, store.ReviewEvent{UserID: row.ReviewerID, ReviewedOn: row.ReviewedOn})
	}
	return events, nil
}

// ListPendingRequests returns unresolved requests, oldest first.
// Only the requesting user's profile id is populated.
func (q queries) ListPendingRequests(ctx context.Context) ([]store.PermissionRequest, error) {
	var rows []model.PermissionRequest
	err := q.db.WithContext(ctx).Raw(selectRequest + ` WHERE accepted IS NULL ORDER BY created_on, id`).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	requests := make([]store.PermissionRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, toRequest(row))
	}
	return requests, nil
}

func toRequest(row model.PermissionRequest) store.PermissionRequest {
	return store.PermissionRequest{
		ID:               row.ID,
		RequestingUserID: row.RequestingUserID,
		RequestingUser:   store.User{ProfileID: row.RequestingUserID},
		RequestedGroup:   row.RequestedPermissionGroup,
		ReviewingUserID:  row.ReviewingUserID,
		Accepted:         row.Accepted,
		CreatedOn:        row.CreatedOn,
	}
}
