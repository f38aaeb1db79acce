package job

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"Applyhub/internal/model"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/database"
	"Applyhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingInvalidator struct {
	mu  sync.Mutex
	ids []uint64
}

func (r *recordingInvalidator) InvalidateAnalytics(_ context.Context, userID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, userID)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "job.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestContentMetricJobSyncRecounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	contentRepo := repository.NewContentRepo(db)
	interactionRepo := repository.NewInteractionRepo(db)

	news := &model.Content{ID: 1, ContentType: model.ContentNews, UserID: 9, Title: "n", PublishedAt: time.Now()}
	require.NoError(t, contentRepo.CreateContent(ctx, news))
	// 计数列初始值是脏的
	require.NoError(t, contentRepo.UpdateContentCounts(ctx, news.Ref(), 40, 40))

	for uid := uint64(1); uid <= 3; uid++ {
		require.NoError(t, interactionRepo.CreateInteraction(ctx, &model.Interaction{
			UserID: uid, ContentType: model.ContentNews, ContentID: 1, Kind: model.KindLike, CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, interactionRepo.CreateInteraction(ctx, &model.Interaction{
		UserID: 1, ContentType: model.ContentNews, ContentID: 1, Kind: model.KindBookmark, CreatedAt: time.Now(),
	}))

	inv := &recordingInvalidator{}
	job := NewContentMetricJob(interactionRepo, contentRepo, inv)

	synced, failed := job.Sync(ctx, []string{"news:1", "news:404", "bogus", "post:x"})
	assert.Equal(t, 1, synced)
	assert.Empty(t, failed)
	assert.Equal(t, []uint64{9}, inv.ids)

	got, err := contentRepo.GetContentByRef(ctx, news.Ref())
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.LikesCount)
	assert.Equal(t, int64(1), got.BookmarksCount)
}

func TestContentMetricJobSyncRequeuesOnStoreError(t *testing.T) {
	db := newTestDB(t)
	job := NewContentMetricJob(repository.NewInteractionRepo(db), repository.NewContentRepo(db), nil)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	synced, failed := job.Sync(context.Background(), []string{"event:2"})
	assert.Zero(t, synced)
	assert.Equal(t, []string{"event:2"}, failed)
}

func TestContentMetricJobRunWithoutRedis(t *testing.T) {
	db := newTestDB(t)
	job := NewContentMetricJob(repository.NewInteractionRepo(db), repository.NewContentRepo(db), nil)
	assert.NotPanics(t, job.Run)
}

// memSetStore 按 Redis 语义实现的内存集合，Rename 会覆盖目标键
type memSetStore struct {
	sets map[string]map[string]struct{}
}

func newMemSetStore() *memSetStore {
	return &memSetStore{sets: make(map[string]map[string]struct{})}
}

func (m *memSetStore) add(key string, members ...string) {
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, v := range members {
		m.sets[key][v] = struct{}{}
	}
}

func (m *memSetStore) members(key string) []string {
	res := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		res = append(res, v)
	}
	sort.Strings(res)
	return res
}

func (m *memSetStore) MergeSet(_ context.Context, dst, src string) error {
	for v := range m.sets[src] {
		m.add(dst, v)
	}
	delete(m.sets, src)
	return nil
}

func (m *memSetStore) Rename(_ context.Context, oldKey, newKey string) (bool, error) {
	set, ok := m.sets[oldKey]
	if !ok {
		return false, nil
	}
	m.sets[newKey] = set
	delete(m.sets, oldKey)
	return true, nil
}

func (m *memSetStore) GetSet(_ context.Context, key string) ([]string, error) {
	return m.members(key), nil
}

func (m *memSetStore) SAdd(_ context.Context, key string, members ...interface{}) error {
	for _, v := range members {
		m.add(key, v.(string))
	}
	return nil
}

func (m *memSetStore) DeleteKey(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.sets, k)
	}
	return nil
}

func TestContentMetricJobDrainRecoversLeftoverProcessingSet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	contentRepo := repository.NewContentRepo(db)
	interactionRepo := repository.NewInteractionRepo(db)

	for id := uint64(1); id <= 2; id++ {
		c := &model.Content{ID: id, ContentType: model.ContentNews, UserID: 9, Title: "n", PublishedAt: time.Now()}
		require.NoError(t, contentRepo.CreateContent(ctx, c))
		require.NoError(t, contentRepo.UpdateContentCounts(ctx, c.Ref(), 99, 99))
		require.NoError(t, interactionRepo.CreateInteraction(ctx, &model.Interaction{
			UserID: 1, ContentType: model.ContentNews, ContentID: id, Kind: model.KindLike, CreatedAt: time.Now(),
		}))
	}

	store := newMemSetStore()
	processingKey := consts.ContentDirtyKey + ":processing"
	// news:1 来自上一轮中途退出，news:2 是新写入的
	store.add(processingKey, "news:1")
	store.add(consts.ContentDirtyKey, "news:2")

	job := NewContentMetricJob(interactionRepo, contentRepo, nil)
	job.store = store
	job.drain(ctx)

	for _, ref := range []model.ContentRef{{Type: model.ContentNews, ID: 1}, {Type: model.ContentNews, ID: 2}} {
		got, err := contentRepo.GetContentByRef(ctx, ref)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.LikesCount, ref.String())
		assert.Zero(t, got.BookmarksCount, ref.String())
	}
	assert.Empty(t, store.members(processingKey))
	assert.Empty(t, store.members(consts.ContentDirtyKey))
}

func TestContentMetricJobDrainRequeuesFailures(t *testing.T) {
	db := newTestDB(t)
	job := NewContentMetricJob(repository.NewInteractionRepo(db), repository.NewContentRepo(db), nil)
	store := newMemSetStore()
	store.add(consts.ContentDirtyKey, "event:2")
	job.store = store

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	job.drain(context.Background())
	assert.Equal(t, []string{"event:2"}, store.members(consts.ContentDirtyKey))
	assert.Empty(t, store.members(consts.ContentDirtyKey+":processing"))
}
