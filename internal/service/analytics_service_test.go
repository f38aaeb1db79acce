package service

import (
	"context"
	"testing"
	"time"

	"Applyhub/internal/model"
	"Applyhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type analyticsFixture struct {
	svc      *analyticsServiceImpl
	contents repository.ContentRepo
	metrics  repository.ContentMetricRepo
	apps     repository.ApplicationRepo
	follows  repository.UserFollowRepo
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	db := newTestDB(t)
	f := &analyticsFixture{
		contents: repository.NewContentRepo(db),
		metrics:  repository.NewContentMetricRepo(db),
		apps:     repository.NewApplicationRepo(db),
		follows:  repository.NewUserFollowRepo(db),
	}
	f.svc = NewAnalyticsService(f.contents, f.metrics, f.apps, f.follows, time.Minute, 3).(*analyticsServiceImpl)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func TestGetAnalyticsNewUserReturnsZeroBundle(t *testing.T) {
	f := newAnalyticsFixture(t)

	bundle, err := f.svc.GetAnalytics(context.Background(), 1, "")
	require.NoError(t, err)

	assert.Equal(t, "30days", bundle.Period)
	assert.Equal(t, "2026-04-02", bundle.StartDate)
	assert.Equal(t, "2026-05-01", bundle.EndDate)
	assert.Zero(t, bundle.Overview.TotalViews)
	assert.Zero(t, bundle.Overview.TotalApplications)
	assert.Empty(t, bundle.ContentPerformance)
	assert.Empty(t, bundle.TopContent)
	assert.Len(t, bundle.TimeSeries, 30)
	assert.Zero(t, bundle.ApplicationAnalytics.Total)
	assert.Zero(t, bundle.ApplicationAnalytics.AcceptanceRate)
	assert.Zero(t, bundle.GrowthMetrics.ViewsGrowth)
}

func TestGetAnalyticsUnknownPeriod(t *testing.T) {
	f := newAnalyticsFixture(t)
	_, err := f.svc.GetAnalytics(context.Background(), 1, "14days")
	assert.ErrorIs(t, err, ErrParamInvalid)
}

func TestGetAnalyticsAggregatesStoreData(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	const owner = uint64(1)
	day := func(offset int) time.Time {
		return time.Date(2026, 5, 1+offset, 0, 0, 0, 0, time.UTC)
	}

	contents := []*model.Content{
		{ID: 1, ContentType: model.ContentNews, UserID: owner, Title: "a", ViewsCount: 1000, LikesCount: 50, SharesCount: 10, CommentsCount: 5, PublishedAt: day(-1)},
		{ID: 2, ContentType: model.ContentNews, UserID: owner, Title: "b", ViewsCount: 500, LikesCount: 5, PublishedAt: day(-10)},
		{ID: 3, ContentType: model.ContentEvent, UserID: owner, Title: "c", ViewsCount: 200, LikesCount: 30, CommentsCount: 30, PublishedAt: day(-3)},
		{ID: 4, ContentType: model.ContentPost, UserID: 2, Title: "someone else", ViewsCount: 9999, PublishedAt: day(-1)},
	}
	for _, c := range contents {
		require.NoError(t, f.contents.CreateContent(ctx, c))
	}

	// 当前 7 天窗口 [04-25, 05-01]，上一窗口 [04-18, 04-24]
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, contents[0].Ref(), owner, day(0), model.MetricViews, 300))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, contents[0].Ref(), owner, day(-2), model.MetricViews, 100))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, contents[0].Ref(), owner, day(-2), model.MetricLikes, 20))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, contents[1].Ref(), owner, day(-9), model.MetricViews, 200))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, contents[1].Ref(), owner, day(-20), model.MetricViews, 5000))

	apps := []*model.Application{
		{ApplicantID: owner, OpportunityID: 1, Status: model.StatusAccepted, FullName: "x", Email: "x@example.com"},
		{ApplicantID: owner, OpportunityID: 2, Status: model.StatusRejected, FullName: "x", Email: "x@example.com"},
		{ApplicantID: owner, OpportunityID: 3, Status: model.StatusDraft, FullName: "x", Email: "x@example.com"},
	}
	for _, a := range apps {
		if a.Status != model.StatusDraft {
			submitted := day(-6)
			reviewed := day(-4)
			a.SubmittedAt, a.ReviewedAt = &submitted, &reviewed
		}
		require.NoError(t, f.apps.CreateApplication(ctx, a))
	}

	require.NoError(t, f.follows.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 7, FollowingID: owner, CreatedAt: day(-1)}))
	require.NoError(t, f.follows.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 8, FollowingID: owner, CreatedAt: day(-2)}))
	require.NoError(t, f.follows.CreateUserFollow(ctx, &model.UserFollow{FollowerID: 9, FollowingID: owner, CreatedAt: day(-8)}))
	require.NoError(t, f.follows.CreateUserFollow(ctx, &model.UserFollow{FollowerID: owner, FollowingID: 9, CreatedAt: day(-8)}))

	bundle, err := f.svc.GetAnalytics(ctx, owner, "7days")
	require.NoError(t, err)

	assert.Equal(t, "2026-04-25", bundle.StartDate)
	assert.Equal(t, "2026-05-01", bundle.EndDate)
	assert.Equal(t, int64(1700), bundle.Overview.TotalViews)
	assert.Equal(t, int64(85), bundle.Overview.TotalLikes)
	assert.Equal(t, int64(3), bundle.Overview.TotalPosts)
	assert.Equal(t, int64(3), bundle.Overview.TotalFollowers)
	assert.Equal(t, int64(1), bundle.Overview.TotalFollowing)
	assert.Equal(t, int64(3), bundle.Overview.TotalApplications)

	require.Len(t, bundle.ContentPerformance, 2)
	assert.Equal(t, model.ContentNews, bundle.ContentPerformance[0].ContentType)
	assert.Equal(t, model.ContentEvent, bundle.ContentPerformance[1].ContentType)

	require.Len(t, bundle.TopContent, 3)
	assert.Equal(t, uint64(1), bundle.TopContent[0].ID)
	assert.Equal(t, uint64(3), bundle.TopContent[1].ID)

	require.Len(t, bundle.TimeSeries, 7)
	last := bundle.TimeSeries[6]
	assert.Equal(t, "2026-05-01", last.Date)
	assert.Equal(t, int64(300), last.Views)
	assert.Equal(t, int64(100), bundle.TimeSeries[4].Views)
	assert.Equal(t, int64(1), bundle.TimeSeries[5].PostsCreated)

	assert.Equal(t, 3, bundle.ApplicationAnalytics.Total)
	assert.Equal(t, 1, bundle.ApplicationAnalytics.Accepted)
	assert.Equal(t, 50.0, bundle.ApplicationAnalytics.AcceptanceRate)
	assert.Equal(t, 2.0, bundle.ApplicationAnalytics.AvgResponseTime)

	// 当前窗口 400 次浏览，上一窗口 200 次
	assert.Equal(t, 100.0, bundle.GrowthMetrics.ViewsGrowth)
	// 新增关注：当前 2，上一窗口 1
	assert.Equal(t, 100.0, bundle.GrowthMetrics.FollowersGrowth)
	// 发布：当前 2 条（05-01 前 1 天、前 3 天），上一窗口 1 条
	assert.Equal(t, 100.0, bundle.GrowthMetrics.PostsGrowth)
}

func TestInvalidateAnalyticsWithoutRedis(t *testing.T) {
	f := newAnalyticsFixture(t)
	assert.NotPanics(t, func() {
		f.svc.InvalidateAnalytics(context.Background(), 1)
	})
}

func TestGetAnalyticsNonUTCClockKeepsMetricDays(t *testing.T) {
	f := newAnalyticsFixture(t)
	ctx := context.Background()
	const owner = uint64(1)
	ny := time.FixedZone("EDT", -4*3600)

	content := &model.Content{ID: 1, ContentType: model.ContentNews, UserID: owner, Title: "a", PublishedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, f.contents.CreateContent(ctx, content))
	// 消费端按 UTC 自然日写入
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, content.Ref(), owner, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), model.MetricViews, 42))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, content.Ref(), owner, time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC), model.MetricViews, 10))
	require.NoError(t, f.metrics.IncrDailyMetric(ctx, content.Ref(), owner, time.Date(2026, 4, 24, 0, 0, 0, 0, time.UTC), model.MetricViews, 26))

	clocks := []time.Time{
		time.Date(2026, 5, 1, 10, 0, 0, 0, ny),
		time.Date(2026, 4, 30, 22, 0, 0, 0, ny),
	}
	for _, clock := range clocks {
		f.svc.now = func() time.Time { return clock }
		bundle, err := f.svc.GetAnalytics(ctx, owner, "7days")
		require.NoError(t, err)

		assert.Equal(t, "2026-04-25", bundle.StartDate, clock)
		assert.Equal(t, "2026-05-01", bundle.EndDate, clock)
		require.Len(t, bundle.TimeSeries, 7)
		assert.Equal(t, "2026-05-01", bundle.TimeSeries[6].Date)
		assert.Equal(t, int64(42), bundle.TimeSeries[6].Views)
		assert.Equal(t, int64(10), bundle.TimeSeries[0].Views)
		// 当前窗口 52，上一窗口 26
		assert.Equal(t, 100.0, bundle.GrowthMetrics.ViewsGrowth, clock)
	}
}
