package models

import "time"

// Like records that a user liked a post. The combination of UserID and
// PostID must be unique; the composite index makes a duplicate like
// impossible even under concurrent toggles.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;uniqueIndex:idx_user_post;index"`
	CreatedAt time.Time `json:"created_at"`
}
