package kafka

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/util"
	"Applyhub/internal/repository"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

const (
	EventView    = "view"
	EventShare   = "share"
	EventComment = "comment"
)

// EngagementEvent 内容服务上报的浏览/分享/评论事件
type EngagementEvent struct {
	ContentType string    `json:"content_type" validate:"required"`
	ContentID   uint64    `json:"content_id" validate:"required"`
	Event       string    `json:"event" validate:"required,oneof=view share comment"`
	Count       int64     `json:"count" validate:"gte=0,lte=100000"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// 事件 -> (contents 累计列, content_daily_metrics 增量列)
var engagementColumns = map[string][2]string{
	EventView:    {"views_count", model.MetricViews},
	EventShare:   {"shares_count", model.MetricShares},
	EventComment: {"comments_count", model.MetricComments},
}

type EngagementHandler struct {
	contentRepo       repository.ContentRepo
	contentMetricRepo repository.ContentMetricRepo
}

func NewEngagementHandler(contentRepo repository.ContentRepo, contentMetricRepo repository.ContentMetricRepo) *EngagementHandler {
	return &EngagementHandler{
		contentRepo:       contentRepo,
		contentMetricRepo: contentMetricRepo,
	}
}

func (s *EngagementHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer setup")
	return nil
}

func (s *EngagementHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("engagement consumer cleanup")
	return nil
}

func (s *EngagementHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-engagement consume claim")
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("topic-engagement process batch error", "err", err)
		return err
	}
	return nil
}

func (s *EngagementHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev EngagementEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return fmt.Errorf("%w: %v", errSkipMessage, err)
	}
	if err := util.ValidateDTO(&ev); err != nil {
		return fmt.Errorf("%w: %v", errSkipMessage, err)
	}
	columns := engagementColumns[ev.Event]
	contentType, err := model.ParseContentType(ev.ContentType)
	if err != nil {
		return fmt.Errorf("%w: %v", errSkipMessage, err)
	}
	if ev.Count <= 0 {
		ev.Count = 1
	}
	ref := model.ContentRef{Type: contentType, ID: ev.ContentID}

	content, err := s.contentRepo.GetContentByRef(ctx, ref)
	if err != nil {
		return err
	}
	if content == nil {
		log.WarnContext(ctx, "engagement on unknown content", "content", ref.String(), "event", ev.Event)
		return nil
	}

	if err = s.contentRepo.IncrContentCounter(ctx, ref, columns[0], ev.Count); err != nil {
		return err
	}
	// occurred_at 缺省时按消费时间计入当天
	day := eventDay(ev.OccurredAt.UnixMilli())
	return s.contentMetricRepo.IncrDailyMetric(ctx, ref, content.UserID, day, columns[1], ev.Count)
}
