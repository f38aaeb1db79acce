package repository

import (
	"Applyhub/internal/model"
	"context"

	"gorm.io/gorm"
)

type InteractionRepo interface {
	CreateInteraction(ctx context.Context, interaction *model.Interaction) error
	DeleteInteraction(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind) (int64, error)
	CheckInteractionExists(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind) (bool, error)
	GetInteractionKinds(ctx context.Context, userID uint64, ref model.ContentRef) ([]model.InteractionKind, error)
	CountInteractions(ctx context.Context, ref model.ContentRef, kind model.InteractionKind) (int64, error)
	ListUserInteractions(ctx context.Context, userID uint64, kind model.InteractionKind, limit, offset int) ([]*model.Interaction, error)
}

type interactionRepoImpl struct {
	db *gorm.DB
}

func NewInteractionRepo(db *gorm.DB) InteractionRepo {
	return &interactionRepoImpl{db: db}
}

func (r *interactionRepoImpl) CreateInteraction(ctx context.Context, interaction *model.Interaction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

// DeleteInteraction 返回删除的行数，记录不存在时为 0
func (r *interactionRepoImpl) DeleteInteraction(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ? AND kind = ?", userID, ref.Type, ref.ID, kind).
		Delete(&model.Interaction{})
	return result.RowsAffected, result.Error
}

func (r *interactionRepoImpl) CheckInteractionExists(ctx context.Context, userID uint64, ref model.ContentRef, kind model.InteractionKind) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("user_id = ? AND content_type = ? AND content_id = ? AND kind = ?", userID, ref.Type, ref.ID, kind).
		Count(&count).Error
	return count > 0, err
}

// GetInteractionKinds 用户对一条内容的全部互动类型
func (r *interactionRepoImpl) GetInteractionKinds(ctx context.Context, userID uint64, ref model.ContentRef) ([]model.InteractionKind, error) {
	kinds := make([]model.InteractionKind, 0, 2)
	err := r.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, ref.Type, ref.ID).
		Pluck("kind", &kinds).Error
	return kinds, err
}

func (r *interactionRepoImpl) CountInteractions(ctx context.Context, ref model.ContentRef, kind model.InteractionKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Interaction{}).
		Where("content_type = ? AND content_id = ? AND kind = ?", ref.Type, ref.ID, kind).
		Count(&count).Error
	return count, err
}

// ListUserInteractions 按时间倒序分页
func (r *interactionRepoImpl) ListUserInteractions(ctx context.Context, userID uint64, kind model.InteractionKind, limit, offset int) ([]*model.Interaction, error) {
	list := make([]*model.Interaction, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("created_at DESC, content_type ASC, content_id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
