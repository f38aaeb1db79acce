package repository

import (
	"Applyhub/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// 允许由事件累加的计数列
var contentCounterColumns = map[string]struct{}{
	"views_count":    {},
	"shares_count":   {},
	"comments_count": {},
}

type ContentRepo interface {
	CreateContent(ctx context.Context, content *model.Content) error
	GetContentByRef(ctx context.Context, ref model.ContentRef) (*model.Content, error)
	GetContentsByRefs(ctx context.Context, refs []model.ContentRef) ([]*model.Content, error)
	GetContentsByUserID(ctx context.Context, userID uint64) ([]*model.Content, error)
	UpdateContentCounts(ctx context.Context, ref model.ContentRef, likes, bookmarks int64) error
	IncrContentCounter(ctx context.Context, ref model.ContentRef, column string, delta int64) error
}

type contentRepoImpl struct {
	db *gorm.DB
}

func NewContentRepo(db *gorm.DB) ContentRepo {
	return &contentRepoImpl{db: db}
}

func (r *contentRepoImpl) CreateContent(ctx context.Context, content *model.Content) error {
	return r.db.WithContext(ctx).Create(content).Error
}

// GetContentByRef 不存在时返回 nil, nil
func (r *contentRepoImpl) GetContentByRef(ctx context.Context, ref model.ContentRef) (*model.Content, error) {
	var content model.Content
	err := r.db.WithContext(ctx).
		Where("content_type = ? AND id = ?", ref.Type, ref.ID).
		First(&content).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &content, nil
}

// GetContentsByRefs 按类型分组批量查询，结果顺序不保证
func (r *contentRepoImpl) GetContentsByRefs(ctx context.Context, refs []model.ContentRef) ([]*model.Content, error) {
	contents := make([]*model.Content, 0, len(refs))
	if len(refs) == 0 {
		return contents, nil
	}

	idsByType := make(map[model.ContentType][]uint64)
	for _, ref := range refs {
		idsByType[ref.Type] = append(idsByType[ref.Type], ref.ID)
	}

	for ct, ids := range idsByType {
		var part []*model.Content
		err := r.db.WithContext(ctx).
			Where("content_type = ? AND id IN ?", ct, ids).
			Find(&part).Error
		if err != nil {
			return nil, err
		}
		contents = append(contents, part...)
	}
	return contents, nil
}

func (r *contentRepoImpl) GetContentsByUserID(ctx context.Context, userID uint64) ([]*model.Content, error) {
	contents := make([]*model.Content, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("published_at DESC").
		Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

// UpdateContentCounts 定时任务回写点赞数和收藏数
func (r *contentRepoImpl) UpdateContentCounts(ctx context.Context, ref model.ContentRef, likes, bookmarks int64) error {
	return r.db.WithContext(ctx).Model(&model.Content{}).
		Where("content_type = ? AND id = ?", ref.Type, ref.ID).
		Updates(map[string]interface{}{
			"likes_count":     likes,
			"bookmarks_count": bookmarks,
		}).Error
}

// IncrContentCounter 浏览/分享/评论事件直接累加
func (r *contentRepoImpl) IncrContentCounter(ctx context.Context, ref model.ContentRef, column string, delta int64) error {
	if _, ok := contentCounterColumns[column]; !ok {
		return fmt.Errorf("unsupported counter column %q", column)
	}
	return r.db.WithContext(ctx).Model(&model.Content{}).
		Where("content_type = ? AND id = ?", ref.Type, ref.ID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
