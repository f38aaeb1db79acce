package service

import (
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/analytics"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/metrics"
	"Applyhub/internal/pkg/redis"
	"Applyhub/internal/pkg/util"
	"Applyhub/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

type AnalyticsService interface {
	AnalyticsInvalidator
	GetAnalytics(ctx context.Context, userID uint64, period string) (*analytics.Bundle, error)
}

type analyticsServiceImpl struct {
	contentRepo       repository.ContentRepo
	contentMetricRepo repository.ContentMetricRepo
	applicationRepo   repository.ApplicationRepo
	userFollowRepo    repository.UserFollowRepo
	cacheTTL          time.Duration
	topLimit          int
	now               func() time.Time
}

func NewAnalyticsService(
	contentRepo repository.ContentRepo,
	contentMetricRepo repository.ContentMetricRepo,
	applicationRepo repository.ApplicationRepo,
	userFollowRepo repository.UserFollowRepo,
	cacheTTL time.Duration,
	topLimit int,
) AnalyticsService {
	return &analyticsServiceImpl{
		contentRepo:       contentRepo,
		contentMetricRepo: contentMetricRepo,
		applicationRepo:   applicationRepo,
		userFollowRepo:    userFollowRepo,
		cacheTTL:          cacheTTL,
		topLimit:          topLimit,
		now:               time.Now,
	}
}

func analyticsKey(userID uint64, period string) string {
	return consts.AnalyticsBundleKey + strconv.FormatUint(userID, 10) + ":" + period
}

// GetAnalytics 返回用户看板数据，优先读缓存；新用户返回全零的完整结构
func (s *analyticsServiceImpl) GetAnalytics(ctx context.Context, userID uint64, period string) (*analytics.Bundle, error) {
	if period == "" {
		period = consts.DefaultPeriod
	}
	days, ok := consts.PeriodDays[period]
	if !ok {
		return nil, fmt.Errorf("%w: unknown period %q", ErrParamInvalid, period)
	}

	key := analyticsKey(userID, period)
	if val, err := redis.GetValue(ctx, key); err == nil && val != "" {
		var cached analytics.Bundle
		if err = json.Unmarshal([]byte(val), &cached); err == nil {
			metrics.RecordAnalyticsCache("hit")
			return &cached, nil
		}
		log.WarnContext(ctx, "decode analytics cache failed", "key", key, "err", err)
	}
	metrics.RecordAnalyticsCache("miss")

	// 与消费端写入 metric_date 的日历一致
	now := s.now().UTC()
	end := util.MetricDay(now)
	start := end.AddDate(0, 0, -(days - 1))
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := start.AddDate(0, 0, -days)

	var (
		contents                       []*model.Content
		dailyRows                      []*model.ContentDailyMetric
		apps                           []*model.Application
		followers, following           int64
		newFollowers, prevNewFollowers int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		contents, err = s.contentRepo.GetContentsByUserID(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		dailyRows, err = s.contentMetricRepo.GetUserDailyMetrics(gctx, userID, prevStart, end)
		return err
	})
	g.Go(func() (err error) {
		apps, err = s.applicationRepo.ListByApplicant(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		followers, err = s.userFollowRepo.GetUserFollowerCount(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		following, err = s.userFollowRepo.GetUserFollowingCount(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		newFollowers, err = s.userFollowRepo.CountNewFollowers(gctx, userID, start, end.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		prevNewFollowers, err = s.userFollowRepo.CountNewFollowers(gctx, userID, prevStart, start)
		return err
	})
	if err := g.Wait(); err != nil {
		log.ErrorContext(ctx, "load analytics input failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	items := make([]analytics.ContentItem, 0, len(contents))
	for _, c := range contents {
		items = append(items, analytics.ItemFromContent(c))
	}

	daily := make([]analytics.DailyCounter, 0, len(dailyRows)+len(items))
	for _, r := range dailyRows {
		daily = append(daily, analytics.DailyCounter{
			Date:     r.MetricDate,
			Views:    r.NewViews,
			Likes:    r.NewLikes,
			Shares:   r.NewShares,
			Comments: r.NewComments,
		})
	}
	daily = append(daily, analytics.PostsCreatedDaily(items)...)

	current := analytics.TotalsFromDaily(daily, start, end)
	current.Followers = newFollowers
	previous := analytics.TotalsFromDaily(daily, prevStart, prevEnd)
	previous.Followers = prevNewFollowers

	bundle := analytics.BuildBundle(analytics.Input{
		Period:       period,
		Start:        start,
		End:          end,
		Counters:     analytics.Counters{Followers: followers, Following: following},
		Items:        items,
		Daily:        daily,
		Applications: apps,
		Current:      current,
		Previous:     previous,
		TopLimit:     s.topLimit,
		Now:          now,
	})

	if data, err := json.Marshal(bundle); err == nil {
		if err = redis.SetWithExpiration(ctx, key, data, s.cacheTTL); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
			log.WarnContext(ctx, "cache analytics bundle failed", "key", key, "err", err)
		}
	}
	return bundle, nil
}

// InvalidateAnalytics 删除用户所有周期的看板缓存
func (s *analyticsServiceImpl) InvalidateAnalytics(ctx context.Context, userID uint64) {
	keys := make([]string, 0, len(consts.PeriodDays))
	for period := range consts.PeriodDays {
		keys = append(keys, analyticsKey(userID, period))
	}
	if err := redis.DeleteKey(ctx, keys...); err != nil && !errors.Is(err, redis.ErrNotInitialized) {
		log.WarnContext(ctx, "invalidate analytics cache failed", "user_id", userID, "err", err)
	}
}
