package model

import (
	"time"
)

// ContentDailyMetric 单条内容的每日增量
type ContentDailyMetric struct {
	ID           uint64      `gorm:"primaryKey"`
	ContentType  ContentType `gorm:"type:varchar(32);not null;uniqueIndex:idx_content_date,priority:1" json:"content_type"`
	ContentID    uint64      `gorm:"not null;uniqueIndex:idx_content_date,priority:2" json:"content_id"`
	MetricDate   time.Time   `gorm:"type:date;not null;uniqueIndex:idx_content_date,priority:3;column:metric_date" json:"metric_date"`
	OwnerID      uint64      `gorm:"not null;index:idx_owner_date" json:"owner_id"`
	NewViews     int64       `gorm:"not null;default:0" json:"new_views"`
	NewLikes     int64       `gorm:"not null;default:0" json:"new_likes"`
	NewShares    int64       `gorm:"not null;default:0" json:"new_shares"`
	NewComments  int64       `gorm:"not null;default:0" json:"new_comments"`
	NewBookmarks int64       `gorm:"not null;default:0" json:"new_bookmarks"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (ContentDailyMetric) TableName() string {
	return "content_daily_metrics"
}

// 可累加的指标列
const (
	MetricViews     = "new_views"
	MetricLikes     = "new_likes"
	MetricShares    = "new_shares"
	MetricComments  = "new_comments"
	MetricBookmarks = "new_bookmarks"
)
