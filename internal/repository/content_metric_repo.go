package repository

import (
	"Applyhub/internal/model"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var dailyMetricColumns = map[string]struct{}{
	model.MetricViews:     {},
	model.MetricLikes:     {},
	model.MetricShares:    {},
	model.MetricComments:  {},
	model.MetricBookmarks: {},
}

type ContentMetricRepo interface {
	IncrDailyMetric(ctx context.Context, ref model.ContentRef, ownerID uint64, date time.Time, column string, delta int64) error
	GetUserDailyMetrics(ctx context.Context, ownerID uint64, start, end time.Time) ([]*model.ContentDailyMetric, error)
}

type contentMetricRepoImpl struct {
	db *gorm.DB
}

func NewContentMetricRepo(db *gorm.DB) ContentMetricRepo {
	return &contentMetricRepoImpl{db: db}
}

// IncrDailyMetric 采用 Upsert 逻辑。content + metric_date 已存在时在原值上累加
func (r *contentMetricRepoImpl) IncrDailyMetric(ctx context.Context, ref model.ContentRef, ownerID uint64, date time.Time, column string, delta int64) error {
	if _, ok := dailyMetricColumns[column]; !ok {
		return fmt.Errorf("unsupported metric column %q", column)
	}

	metric := &model.ContentDailyMetric{
		ContentType: ref.Type,
		ContentID:   ref.ID,
		MetricDate:  date,
		OwnerID:     ownerID,
	}
	switch column {
	case model.MetricViews:
		metric.NewViews = delta
	case model.MetricLikes:
		metric.NewLikes = delta
	case model.MetricShares:
		metric.NewShares = delta
	case model.MetricComments:
		metric.NewComments = delta
	case model.MetricBookmarks:
		metric.NewBookmarks = delta
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_type"}, {Name: "content_id"}, {Name: "metric_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(column+" + ?", delta),
		}),
	}).Create(metric).Error
}

// GetUserDailyMetrics 用户全部内容在 [start, end] 内的每日增量
func (r *contentMetricRepoImpl) GetUserDailyMetrics(ctx context.Context, ownerID uint64, start, end time.Time) ([]*model.ContentDailyMetric, error) {
	metrics := make([]*model.ContentDailyMetric, 0)
	result := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("metric_date >= ? AND metric_date <= ?", start, end).
		Order("metric_date ASC").
		Find(&metrics)
	if result.Error != nil {
		return nil, result.Error
	}
	return metrics, nil
}
