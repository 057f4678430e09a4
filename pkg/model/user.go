package model

import "time"

// User is a chat profile known to the bot, keyed by its profile id
type User struct {
	ProfileID                    int        `gorm:"column:profile_id;primaryKey;autoIncrement:false"`
	OptInToReviewTracking        bool       `gorm:"column:opt_in_to_review_tracking;not null;default:false"`
	LastTrackingPreferenceChange *time.Time `gorm:"column:last_tracking_preference_change"`
}

func (User) TableName() string {
	return "users"
}
