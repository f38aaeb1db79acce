package kafka

import (
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

type analyticsInvalidator interface {
	InvalidateAnalytics(ctx context.Context, userID uint64)
}

// FollowsHandler 关注关系变化后让双方的看板缓存失效
type FollowsHandler struct {
	invalidator analyticsInvalidator
}

func NewFollowsHandler(invalidator analyticsInvalidator) *FollowsHandler {
	return &FollowsHandler{invalidator: invalidator}
}

func (s *FollowsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer setup")
	return nil
}

func (s *FollowsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("user follows consumer cleanup")
	return nil
}

func (s *FollowsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-user-follows consume claim")
	if err := pullMessageBatch(session, claim, s.logic); err != nil {
		log.Error("topic-user-follows process batch error", "err", err)
		return err
	}
	return nil
}

func (s *FollowsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ToCanalMessage(msg, "user_follows")
	if err != nil {
		return err
	}
	if canalMsg.Type != INSERT && canalMsg.Type != DELETE {
		return nil
	}

	affected := make(map[uint64]struct{}, len(canalMsg.Data)*2)
	for _, row := range canalMsg.Data {
		affected[StrToUint64(row["follower_id"])] = struct{}{}
		affected[StrToUint64(row["following_id"])] = struct{}{}
	}
	for uid := range affected {
		if uid > 0 {
			s.invalidator.InvalidateAnalytics(ctx, uid)
		}
	}
	return nil
}
