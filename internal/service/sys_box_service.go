package service

import (
	"Applyhub/internal/api/dto"
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/mongo"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
)

const notifyTimeout = 5 * time.Second

// StatusNotifier 申请状态变更后的通知出口，不能阻塞也不能影响状态流转结果
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, app *model.Application, from model.ApplicationStatus, actorID uint64)
}

type SysBoxService interface {
	StatusNotifier
	GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.SysBoxDTO, error)
	GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error)
	MarkRead(ctx context.Context, userID uint64, msgID string) error
	MarkAllRead(ctx context.Context, userID uint64) error
}

type sysBoxServiceImpl struct {
	sysBoxRepo mongo.SysBoxRepo
}

// NewSysBoxService sysBox 为 nil 时（未配置 MongoDB）通知静默丢弃，查询返回空
func NewSysBoxService(sysBox mongo.SysBoxRepo) SysBoxService {
	return &sysBoxServiceImpl{
		sysBoxRepo: sysBox,
	}
}

// NotifyStatusChange 面试安排/录用/拒绝时给申请人发一条系统通知，异步执行
func (s *sysBoxServiceImpl) NotifyStatusChange(ctx context.Context, app *model.Application, from model.ApplicationStatus, actorID uint64) {
	if s.sysBoxRepo == nil {
		return
	}
	msg := buildStatusNotice(app, from, actorID)
	if msg == nil {
		return
	}

	go func() {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.sysBoxRepo.CreateNotification(nctx, msg); err != nil {
			log.WarnContext(nctx, "create status notification failed",
				"application_id", app.ID,
				"status", app.Status,
				"err", err,
			)
		}
	}()
}

func buildStatusNotice(app *model.Application, from model.ApplicationStatus, actorID uint64) *mongo.SysBoxModel {
	msg := &mongo.SysBoxModel{
		ReceiverID: app.ApplicantID,
		SenderID:   actorID,
		TargetID:   app.ID,
		Payload: map[string]any{
			"opportunity_id": app.OpportunityID,
			"from_status":    string(from),
			"to_status":      string(app.Status),
		},
		CreatedAt: time.Now(),
	}
	switch app.Status {
	case model.StatusInterviewScheduled:
		msg.Type = mongo.NotifyInterviewScheduled
		msg.Content = "您的申请已进入面试阶段"
		if app.InterviewDate != nil {
			msg.Payload["interview_date"] = app.InterviewDate.UTC().Format(time.RFC3339)
			msg.Content = fmt.Sprintf("您的申请已安排面试，时间：%s", app.InterviewDate.Format("2006-01-02 15:04"))
		}
		if app.InterviewLocation != "" {
			msg.Payload["interview_location"] = app.InterviewLocation
		}
	case model.StatusAccepted:
		msg.Type = mongo.NotifyAccepted
		msg.Content = "恭喜，您的申请已被录用"
	case model.StatusRejected:
		msg.Type = mongo.NotifyRejected
		msg.Content = "很遗憾，您的申请未通过"
	default:
		return nil
	}
	return msg
}

// GetNotificationList 获取通知列表
func (s *sysBoxServiceImpl) GetNotificationList(ctx context.Context, userID uint64, page, pageSize int) ([]*dto.SysBoxDTO, error) {
	if s.sysBoxRepo == nil {
		return []*dto.SysBoxDTO{}, nil
	}
	limit := int64(pageSize)
	offset := int64((page - 1) * pageSize)

	list, err := s.sysBoxRepo.GetNotificationList(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	res := make([]*dto.SysBoxDTO, 0, len(list))
	for _, m := range list {
		d := &dto.SysBoxDTO{}
		_ = copier.Copy(d, m)
		d.ID = m.ID.Hex()
		d.CreatedAt = m.CreatedAt.UTC().Format(time.RFC3339)
		if m.SenderID == 0 {
			d.SenderName = "系统通知"
		} else {
			d.SenderName = "评审"
		}
		res = append(res, d)
	}
	return res, nil
}

// GetUnreadCount 获取未读数
func (s *sysBoxServiceImpl) GetUnreadCount(ctx context.Context, userID uint64) (*dto.SysBoxUnreadDTO, error) {
	if s.sysBoxRepo == nil {
		return &dto.SysBoxUnreadDTO{}, nil
	}
	count, err := s.sysBoxRepo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return &dto.SysBoxUnreadDTO{UnreadCount: count}, nil
}

// MarkRead 标记单条已读，只能标记自己的通知
func (s *sysBoxServiceImpl) MarkRead(ctx context.Context, userID uint64, msgID string) error {
	if s.sysBoxRepo == nil {
		return ErrNotificationNotFound
	}
	err := s.sysBoxRepo.MarkAsRead(ctx, userID, msgID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrInvalidNotificationID):
		return ErrParamInvalid
	case errors.Is(err, mongoDB.ErrNoDocuments):
		return ErrNotificationNotFound
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

// MarkAllRead 一键已读
func (s *sysBoxServiceImpl) MarkAllRead(ctx context.Context, userID uint64) error {
	if s.sysBoxRepo == nil {
		return nil
	}
	if err := s.sysBoxRepo.MarkAllAsRead(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
