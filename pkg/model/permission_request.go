package model

import "time"

// PermissionRequest is a user's request to join a permission group.
// Accepted is NULL until the request is resolved.
type PermissionRequest struct {
	ID                       int       `gorm:"column:id;primaryKey"`
	RequestingUserID         int       `gorm:"column:requesting_user_id;not null"`
	RequestedPermissionGroup Group     `gorm:"column:requested_permission_group;type:text;not null"`
	ReviewingUserID          *int      `gorm:"column:reviewing_user_id"`
	Accepted                 *bool     `gorm:"column:accepted"`
	CreatedOn                time.Time `gorm:"column:created_on;autoCreateTime"`
}

func (PermissionRequest) TableName() string {
	return "permission_requests"
}
