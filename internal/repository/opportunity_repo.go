package repository

import (
	"Applyhub/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// OpportunityRepo 机会目录只读访问
type OpportunityRepo interface {
	GetOpportunity(ctx context.Context, id uint64) (*model.Opportunity, error)
	CreateOpportunity(ctx context.Context, opp *model.Opportunity) error
}

type opportunityRepoImpl struct {
	db *gorm.DB
}

func NewOpportunityRepo(db *gorm.DB) OpportunityRepo {
	return &opportunityRepoImpl{db: db}
}

// GetOpportunity 不存在时返回 nil, nil
func (r *opportunityRepoImpl) GetOpportunity(ctx context.Context, id uint64) (*model.Opportunity, error) {
	var opp model.Opportunity
	err := r.db.WithContext(ctx).First(&opp, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &opp, nil
}

func (r *opportunityRepoImpl) CreateOpportunity(ctx context.Context, opp *model.Opportunity) error {
	return r.db.WithContext(ctx).Create(opp).Error
}
