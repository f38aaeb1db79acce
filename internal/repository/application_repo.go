package repository

import (
	"Applyhub/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, app *model.Application) error
	GetApplication(ctx context.Context, id uint64) (*model.Application, error)
	FindByApplicantAndOpportunity(ctx context.Context, applicantID, opportunityID uint64) (*model.Application, error)
	ListByApplicant(ctx context.Context, applicantID uint64) ([]*model.Application, error)
	ListByOpportunity(ctx context.Context, opportunityID uint64, limit, offset int) ([]*model.Application, error)
	UpdateApplicationCAS(ctx context.Context, app *model.Application, expected model.ApplicationStatus) (bool, error)
}

type applicationRepoImpl struct {
	db *gorm.DB
}

func NewApplicationRepo(db *gorm.DB) ApplicationRepo {
	return &applicationRepoImpl{db: db}
}

// CreateApplication (applicant_id, opportunity_id) 唯一，重复时返回唯一键冲突错误
func (r *applicationRepoImpl) CreateApplication(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// GetApplication 不存在时返回 nil, nil
func (r *applicationRepoImpl) GetApplication(ctx context.Context, id uint64) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepoImpl) FindByApplicantAndOpportunity(ctx context.Context, applicantID, opportunityID uint64) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Where("applicant_id = ? AND opportunity_id = ?", applicantID, opportunityID).
		First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

// ListByApplicant 申请人的全部申请，按创建时间倒序
func (r *applicationRepoImpl) ListByApplicant(ctx context.Context, applicantID uint64) ([]*model.Application, error) {
	apps := make([]*model.Application, 0)
	err := r.db.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *applicationRepoImpl) ListByOpportunity(ctx context.Context, opportunityID uint64, limit, offset int) ([]*model.Application, error) {
	apps := make([]*model.Application, 0)
	err := r.db.WithContext(ctx).
		Where("opportunity_id = ?", opportunityID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// UpdateApplicationCAS 单条 UPDATE，只有当前状态仍为 expected 时才写入；返回是否命中
func (r *applicationRepoImpl) UpdateApplicationCAS(ctx context.Context, app *model.Application, expected model.ApplicationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ? AND status = ?", app.ID, expected).
		Updates(map[string]interface{}{
			"status":             app.Status,
			"submitted_at":       app.SubmittedAt,
			"reviewed_at":        app.ReviewedAt,
			"reviewer_notes":     app.ReviewerNotes,
			"interview_date":     app.InterviewDate,
			"interview_location": app.InterviewLocation,
			"ai_match_score":     app.AIMatchScore,
			"ai_match_reasons":   app.AIMatchReasons,
			"updated_at":         app.UpdatedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
