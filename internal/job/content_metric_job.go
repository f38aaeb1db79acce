package job

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/logger"
	"Applyhub/internal/pkg/metrics"
	"Applyhub/internal/pkg/redis"
	"Applyhub/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	jobName     = "content_metric"
	lockTTL     = 2 * time.Minute
	lockRetries = 1
)

type analyticsInvalidator interface {
	InvalidateAnalytics(ctx context.Context, userID uint64)
}

// dirtySetStore 脏集合所需的 Redis 集合操作
type dirtySetStore interface {
	MergeSet(ctx context.Context, dst, src string) error
	Rename(ctx context.Context, oldKey, newKey string) (bool, error)
	GetSet(ctx context.Context, key string) ([]string, error)
	SAdd(ctx context.Context, key string, members ...interface{}) error
	DeleteKey(ctx context.Context, keys ...string) error
}

type redisSetStore struct{}

func (redisSetStore) MergeSet(ctx context.Context, dst, src string) error {
	return redis.MergeSet(ctx, dst, src)
}

func (redisSetStore) Rename(ctx context.Context, oldKey, newKey string) (bool, error) {
	return redis.Rename(ctx, oldKey, newKey)
}

func (redisSetStore) GetSet(ctx context.Context, key string) ([]string, error) {
	return redis.GetSet(ctx, key)
}

func (redisSetStore) SAdd(ctx context.Context, key string, members ...interface{}) error {
	return redis.SAdd(ctx, key, members...)
}

func (redisSetStore) DeleteKey(ctx context.Context, keys ...string) error {
	return redis.DeleteKey(ctx, keys...)
}

// ContentMetricJob 按脏集合重算内容的点赞/收藏数
type ContentMetricJob struct {
	interactionRepo repository.InteractionRepo
	contentRepo     repository.ContentRepo
	invalidator     analyticsInvalidator
	store           dirtySetStore
}

func NewContentMetricJob(
	interactionRepo repository.InteractionRepo,
	contentRepo repository.ContentRepo,
	invalidator analyticsInvalidator,
) *ContentMetricJob {
	return &ContentMetricJob{
		interactionRepo: interactionRepo,
		contentRepo:     contentRepo,
		invalidator:     invalidator,
		store:           redisSetStore{},
	}
}

func (s *ContentMetricJob) Run() {
	traceID := "job-content-" + uuid.NewString()
	ctx := logger.WithTraceID(context.Background(), traceID)

	// 多实例部署时只允许一个实例执行
	ok, err := redis.TryLock(ctx, consts.ContentJobLock, traceID, lockTTL, lockRetries, 0)
	if err != nil || !ok {
		if err != nil && !errors.Is(err, redis.ErrNotInitialized) {
			log.ErrorContext(ctx, "acquire content job lock error", "err", err)
		}
		return
	}
	defer func() {
		if err := redis.UnLock(ctx, consts.ContentJobLock, traceID); err != nil {
			log.WarnContext(ctx, "release content job lock error", "err", err)
		}
	}()

	s.drain(ctx)
}

// drain 取走脏集合并重算，失败的成员放回下一轮
func (s *ContentMetricJob) drain(ctx context.Context) {
	processingKey := consts.ContentDirtyKey + ":processing"

	// 上一轮中途退出遗留的 processing 集合先并回，避免被 rename 覆盖
	if err := s.store.MergeSet(ctx, consts.ContentDirtyKey, processingKey); err != nil {
		log.ErrorContext(ctx, "merge leftover processing set error", "err", err)
		metrics.RecordJobRun(jobName, false)
		return
	}

	renamed, err := s.store.Rename(ctx, consts.ContentDirtyKey, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "rename content dirty set error", "err", err)
		metrics.RecordJobRun(jobName, false)
		return
	}
	if !renamed {
		return
	}

	members, err := s.store.GetSet(ctx, processingKey)
	if err != nil {
		log.ErrorContext(ctx, "get content dirty set error", "err", err)
		metrics.RecordJobRun(jobName, false)
		return
	}

	synced, failed := s.Sync(ctx, members)

	// 失败的条目放回脏集合，下一轮再试
	if len(failed) > 0 {
		retry := make([]interface{}, 0, len(failed))
		for _, m := range failed {
			retry = append(retry, m)
		}
		if err = s.store.SAdd(ctx, consts.ContentDirtyKey, retry...); err != nil {
			log.ErrorContext(ctx, "requeue dirty content error", "err", err)
		}
	}

	if err = s.store.DeleteKey(ctx, processingKey); err != nil {
		log.ErrorContext(ctx, "delete content processing set error", "err", err)
	}

	metrics.RecordJobRun(jobName, len(failed) == 0)
	log.InfoContext(ctx, "sync content metrics success",
		"content_count", synced,
		"failed_count", len(failed))
}

// Sync 重算给定内容的计数，返回成功条数和需要重试的成员。
// 无法解析或内容已删除的成员直接丢弃。
func (s *ContentMetricJob) Sync(ctx context.Context, members []string) (int, []string) {
	var (
		synced int
		failed []string
		owners = make(map[uint64]struct{})
	)
	for _, m := range members {
		ref, err := model.ParseContentRef(m)
		if err != nil {
			log.WarnContext(ctx, "drop malformed dirty member", "member", m, "err", err)
			continue
		}

		content, err := s.contentRepo.GetContentByRef(ctx, ref)
		if err != nil {
			log.ErrorContext(ctx, "get content error", "content", m, "err", err)
			failed = append(failed, m)
			continue
		}
		if content == nil {
			continue
		}

		likes, err := s.interactionRepo.CountInteractions(ctx, ref, model.KindLike)
		if err != nil {
			log.ErrorContext(ctx, "count likes error", "content", m, "err", err)
			failed = append(failed, m)
			continue
		}
		bookmarks, err := s.interactionRepo.CountInteractions(ctx, ref, model.KindBookmark)
		if err != nil {
			log.ErrorContext(ctx, "count bookmarks error", "content", m, "err", err)
			failed = append(failed, m)
			continue
		}

		if err = s.contentRepo.UpdateContentCounts(ctx, ref, likes, bookmarks); err != nil {
			log.ErrorContext(ctx, "update content counts error", "content", m, "err", err)
			failed = append(failed, m)
			continue
		}
		synced++
		owners[content.UserID] = struct{}{}
	}

	if s.invalidator != nil {
		for uid := range owners {
			s.invalidator.InvalidateAnalytics(ctx, uid)
		}
	}
	return synced, failed
}
