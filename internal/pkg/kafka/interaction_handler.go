package kafka

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/redis"
	"Applyhub/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
)

// InteractionHandler 消费 interactions 表的 binlog：
// 标记脏内容等待定时任务重算，同时累加当天的点赞/收藏净增量
type InteractionHandler struct {
	contentRepo       repository.ContentRepo
	contentMetricRepo repository.ContentMetricRepo
}

func NewInteractionHandler(contentRepo repository.ContentRepo, contentMetricRepo repository.ContentMetricRepo) *InteractionHandler {
	return &InteractionHandler{
		contentRepo:       contentRepo,
		contentMetricRepo: contentMetricRepo,
	}
}

func (s *InteractionHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer setup")
	return nil
}

func (s *InteractionHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("interaction consumer cleanup")
	return nil
}

func (s *InteractionHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-interaction consume claim")
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("topic-interaction process batch error", "err", err)
		return err
	}
	return nil
}

func (s *InteractionHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "interactions")
	if err != nil {
		return err
	}

	var delta int64
	switch canalMsg.Type {
	case INSERT:
		delta = 1
	case DELETE:
		delta = -1
	default:
		return nil
	}

	day := eventDay(canalMsg.ES)
	for _, row := range canalMsg.Data {
		if err = s.applyRow(ctx, row, delta, day); err != nil {
			return err
		}
	}
	return nil
}

func (s *InteractionHandler) applyRow(ctx context.Context, row map[string]interface{}, delta int64, day time.Time) error {
	contentType, err := model.ParseContentType(toString(row["content_type"]))
	if err != nil {
		return fmt.Errorf("%w: %v", errSkipMessage, err)
	}
	kind, err := model.ParseInteractionKind(toString(row["kind"]))
	if err != nil {
		return fmt.Errorf("%w: %v", errSkipMessage, err)
	}
	ref := model.ContentRef{Type: contentType, ID: StrToUint64(row["content_id"])}

	column := model.MetricLikes
	if kind == model.KindBookmark {
		column = model.MetricBookmarks
	}
	if err = redis.SAdd(ctx, consts.ContentDirtyKey, ref.String()); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		return err
	}

	content, err := s.contentRepo.GetContentByRef(ctx, ref)
	if err != nil {
		return err
	}
	if content == nil {
		log.WarnContext(ctx, "interaction on unknown content", "content", ref.String())
		return nil
	}
	return s.contentMetricRepo.IncrDailyMetric(ctx, ref, content.UserID, day, column, delta)
}
