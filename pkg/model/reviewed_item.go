package model

import "time"

// ReviewedItem records a single review logged by a user
type ReviewedItem struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	ReviewerID int       `gorm:"column:reviewer_id;not null"`
	ReviewedOn time.Time `gorm:"column:reviewed_on;not null"`
}

func (ReviewedItem) TableName() string {
	return "reviewed_items"
}
