package model

import "time"

// UserPermission represents a user's membership in a permission group
type UserPermission struct {
	UserID          int       `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	PermissionGroup Group     `gorm:"column:permission_group;primaryKey;type:text"`
	JoinedOn        time.Time `gorm:"column:joined_on;not null"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
