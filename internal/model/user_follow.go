package model

import "time"

type UserFollow struct {
	FollowerID  uint64    `gorm:"primaryKey" json:"follower_id"`
	FollowingID uint64    `gorm:"primaryKey;index:idx_following_id" json:"following_id"`
	CreatedAt   time.Time `gorm:"index:idx_created_at" json:"created_at"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
