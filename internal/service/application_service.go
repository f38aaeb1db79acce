package service

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/metrics"
	"Applyhub/internal/pkg/security"
	"Applyhub/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
)

// AnalyticsInvalidator 数据变化后让看板缓存失效
type AnalyticsInvalidator interface {
	InvalidateAnalytics(ctx context.Context, userID uint64)
}

type ApplicationService interface {
	CreateApplication(ctx context.Context, actor security.Actor, req *dto.CreateApplicationDTO) (*dto.ApplicationDTO, error)
	TransitionStatus(ctx context.Context, actor security.Actor, appID uint64, req *dto.TransitionStatusDTO) (*dto.ApplicationDTO, error)
	GetApplication(ctx context.Context, actor security.Actor, appID uint64) (*dto.ApplicationDTO, error)
	ListMyApplications(ctx context.Context, actor security.Actor) ([]*dto.ApplicationDTO, error)
	ListByOpportunity(ctx context.Context, actor security.Actor, opportunityID uint64, page, pageSize int) ([]*dto.ApplicationDTO, error)
}

type applicationServiceImpl struct {
	applicationRepo repository.ApplicationRepo
	opportunityRepo repository.OpportunityRepo
	notifier        StatusNotifier
	invalidator     AnalyticsInvalidator
	now             func() time.Time
}

func NewApplicationService(
	applicationRepo repository.ApplicationRepo,
	opportunityRepo repository.OpportunityRepo,
	notifier StatusNotifier,
	invalidator AnalyticsInvalidator,
) ApplicationService {
	return &applicationServiceImpl{
		applicationRepo: applicationRepo,
		opportunityRepo: opportunityRepo,
		notifier:        notifier,
		invalidator:     invalidator,
		now:             time.Now,
	}
}

// CreateApplication 创建申请，默认草稿；submit 为 true 时走一次 draft -> submitted 流转
func (s *applicationServiceImpl) CreateApplication(ctx context.Context, actor security.Actor, req *dto.CreateApplicationDTO) (*dto.ApplicationDTO, error) {
	opp, err := s.getOpportunity(ctx, req.OpportunityID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &model.Application{}
	if err = copier.Copy(app, req); err != nil {
		return nil, err
	}
	app.ID = 0
	app.ApplicantID = actor.UserID
	app.Status = model.StatusDraft
	app.CreatedAt = now
	app.UpdatedAt = now

	if req.Submit {
		if opp.DeadlinePassed(now) {
			return nil, ErrDeadlinePassed
		}
		app, err = ApplyTransition(app, model.StatusSubmitted, actor, TransitionMetadata{}, now)
		if err != nil {
			return nil, err
		}
	}

	if err = s.applicationRepo.CreateApplication(ctx, app); err != nil {
		if repository.IsDuplicateError(err) {
			return nil, ErrDuplicateApplication
		}
		log.ErrorContext(ctx, "create application failed", "opportunity_id", req.OpportunityID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.invalidate(ctx, app.ApplicantID)
	return toApplicationDTO(app), nil
}

// TransitionStatus 读取最新记录 -> 校验 -> 条件更新，条件不满足说明期间被他人修改
func (s *applicationServiceImpl) TransitionStatus(ctx context.Context, actor security.Actor, appID uint64, req *dto.TransitionStatusDTO) (*dto.ApplicationDTO, error) {
	target := model.ApplicationStatus(req.TargetStatus)
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown target status %q", ErrInvalidTransition, req.TargetStatus)
	}
	var expected model.ApplicationStatus
	if req.ExpectedStatus != "" {
		st, err := model.ParseApplicationStatus(req.ExpectedStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParamInvalid, err)
		}
		expected = st
	}

	current, err := s.applicationRepo.GetApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if current == nil {
		return nil, ErrApplicationNotFound
	}
	from := current.Status

	next, err := s.transition(ctx, actor, current, target, expected, toTransitionMetadata(req.Metadata))
	if err != nil {
		code, _ := Lookup(err)
		metrics.RecordTransition(string(from), string(target), strconv.Itoa(code))
		return nil, err
	}
	metrics.RecordTransition(string(from), string(target), "ok")

	log.InfoContext(ctx, "application status changed",
		"application_id", next.ID,
		"from", from,
		"to", next.Status,
		"actor_id", actor.UserID,
	)

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, next, from, actor.UserID)
	}
	s.invalidate(ctx, next.ApplicantID)
	return toApplicationDTO(next), nil
}

func (s *applicationServiceImpl) transition(
	ctx context.Context,
	actor security.Actor,
	current *model.Application,
	target, expected model.ApplicationStatus,
	meta TransitionMetadata,
) (*model.Application, error) {
	if expected != "" && expected != current.Status {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrConcurrentModification, expected, current.Status)
	}

	now := s.now()
	next, err := ApplyTransition(current, target, actor, meta, now)
	if err != nil {
		return nil, err
	}

	if current.Status == model.StatusDraft && target == model.StatusSubmitted {
		opp, err := s.getOpportunity(ctx, current.OpportunityID)
		if err != nil {
			return nil, err
		}
		if opp.DeadlinePassed(now) {
			return nil, ErrDeadlinePassed
		}
	}

	ok, err := s.applicationRepo.UpdateApplicationCAS(ctx, next, current.Status)
	if err != nil {
		log.ErrorContext(ctx, "update application status failed", "application_id", current.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok {
		return nil, ErrConcurrentModification
	}
	return next, nil
}

// GetApplication 申请人本人或评审可见
func (s *applicationServiceImpl) GetApplication(ctx context.Context, actor security.Actor, appID uint64) (*dto.ApplicationDTO, error) {
	app, err := s.applicationRepo.GetApplication(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.ApplicantID != actor.UserID && !actor.IsReviewer() {
		return nil, ErrForbidden
	}
	return toApplicationDTO(app), nil
}

func (s *applicationServiceImpl) ListMyApplications(ctx context.Context, actor security.Actor) ([]*dto.ApplicationDTO, error) {
	list, err := s.applicationRepo.ListByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return toApplicationDTOs(list), nil
}

// ListByOpportunity 评审或机会发布者查看某个机会下的申请
func (s *applicationServiceImpl) ListByOpportunity(ctx context.Context, actor security.Actor, opportunityID uint64, page, pageSize int) ([]*dto.ApplicationDTO, error) {
	opp, err := s.getOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if !actor.IsReviewer() && opp.OwnerID != actor.UserID {
		return nil, ErrForbidden
	}

	list, err := s.applicationRepo.ListByOpportunity(ctx, opportunityID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return toApplicationDTOs(list), nil
}

func (s *applicationServiceImpl) getOpportunity(ctx context.Context, id uint64) (*model.Opportunity, error) {
	opp, err := s.opportunityRepo.GetOpportunity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if opp == nil {
		return nil, ErrOpportunityNotFound
	}
	return opp, nil
}

func (s *applicationServiceImpl) invalidate(ctx context.Context, userID uint64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateAnalytics(ctx, userID)
	}
}

func toTransitionMetadata(d dto.TransitionMetadataDTO) TransitionMetadata {
	return TransitionMetadata{
		ReviewerNotes:     d.ReviewerNotes,
		InterviewDate:     d.InterviewDate,
		InterviewLocation: d.InterviewLocation,
		AIMatchScore:      d.AIMatchScore,
		AIMatchReasons:    d.AIMatchReasons,
	}
}

func toApplicationDTO(app *model.Application) *dto.ApplicationDTO {
	res := &dto.ApplicationDTO{}
	_ = copier.Copy(res, app)
	res.Status = app.Status.String()
	return res
}

func toApplicationDTOs(list []*model.Application) []*dto.ApplicationDTO {
	res := make([]*dto.ApplicationDTO, 0, len(list))
	for _, app := range list {
		res = append(res, toApplicationDTO(app))
	}
	return res
}
