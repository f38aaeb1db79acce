package service

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/security"
	"fmt"
	"math"
	"time"
)

// TransitionMetadata 状态流转附带的评审信息，nil 表示不修改
type TransitionMetadata struct {
	ReviewerNotes     *string
	InterviewDate     *time.Time
	InterviewLocation *string
	AIMatchScore      *float64
	AIMatchReasons    *string
}

func (m TransitionMetadata) hasReviewerFields() bool {
	return m.ReviewerNotes != nil || m.InterviewDate != nil || m.InterviewLocation != nil ||
		m.AIMatchScore != nil || m.AIMatchReasons != nil
}

// ApplyTransition 校验并执行一次状态流转，返回修改后的副本，入参 app 不会被修改。
// 校验顺序：流转合法性 -> 操作人权限 -> 必填字段 -> 字段取值。
func ApplyTransition(app *model.Application, target model.ApplicationStatus, actor security.Actor, meta TransitionMetadata, now time.Time) (*model.Application, error) {
	from := app.Status
	if !target.Valid() || !from.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, target)
	}

	isApplicant := actor.UserID == app.ApplicantID
	switch target {
	case model.StatusSubmitted, model.StatusWithdrawn:
		if !isApplicant {
			return nil, fmt.Errorf("%w: only the applicant may move to %s", ErrForbidden, target)
		}
	default:
		if !actor.IsReviewer() {
			return nil, fmt.Errorf("%w: reviewer capability required for %s -> %s", ErrForbidden, from, target)
		}
	}
	if meta.hasReviewerFields() && !actor.IsReviewer() {
		return nil, fmt.Errorf("%w: review metadata requires reviewer capability", ErrForbidden)
	}

	if target == model.StatusInterviewScheduled {
		if meta.InterviewDate == nil {
			return nil, fmt.Errorf("%w: interview_date", ErrMissingField)
		}
		if !meta.InterviewDate.After(now) {
			return nil, fmt.Errorf("%w: interview_date must be in the future", ErrParamInvalid)
		}
	}
	if s := meta.AIMatchScore; s != nil && (math.IsNaN(*s) || *s < 0 || *s > 1) {
		return nil, fmt.Errorf("%w: ai_match_score must be within [0, 1]", ErrParamInvalid)
	}

	next := app.Clone()
	next.Status = target
	next.UpdatedAt = now

	if target == model.StatusSubmitted && next.SubmittedAt == nil {
		stamp := now
		next.SubmittedAt = &stamp
	}
	if target.IsReviewed() && next.ReviewedAt == nil {
		stamp := now
		next.ReviewedAt = &stamp
	}

	// 面试信息只在进入 interview_scheduled 时写入，之后保留历史值
	if target == model.StatusInterviewScheduled {
		date := *meta.InterviewDate
		next.InterviewDate = &date
		if meta.InterviewLocation != nil {
			next.InterviewLocation = *meta.InterviewLocation
		}
	}
	if meta.ReviewerNotes != nil {
		next.ReviewerNotes = *meta.ReviewerNotes
	}
	if meta.AIMatchScore != nil {
		score := *meta.AIMatchScore
		next.AIMatchScore = &score
	}
	if meta.AIMatchReasons != nil {
		next.AIMatchReasons = *meta.AIMatchReasons
	}

	return next, nil
}
