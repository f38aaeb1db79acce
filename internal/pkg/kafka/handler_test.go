package kafka

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"Applyhub/internal/model"
	"Applyhub/internal/pkg/database"
	"Applyhub/internal/repository"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "kafka.db")), &gorm.Config{
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

type handlerFixture struct {
	contents repository.ContentRepo
	metrics  repository.ContentMetricRepo
	ref      model.ContentRef
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	db := newTestDB(t)
	f := &handlerFixture{
		contents: repository.NewContentRepo(db),
		metrics:  repository.NewContentMetricRepo(db),
		ref:      model.ContentRef{Type: model.ContentEvent, ID: 21},
	}
	require.NoError(t, f.contents.CreateContent(context.Background(), &model.Content{
		ID:          f.ref.ID,
		ContentType: f.ref.Type,
		UserID:      8,
		Title:       "Career fair",
		PublishedAt: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}))
	return f
}

func canalMsg(t *testing.T, table, typ string, es int64, rows ...map[string]interface{}) *sarama.ConsumerMessage {
	t.Helper()
	raw, err := json.Marshal(CanalMessage{Table: table, Type: typ, ES: es, Data: rows})
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "canal", Value: raw}
}

func (f *handlerFixture) dailyFor(t *testing.T, day time.Time) *model.ContentDailyMetric {
	t.Helper()
	rows, err := f.metrics.GetUserDailyMetrics(context.Background(), 8, day, day)
	require.NoError(t, err)
	if len(rows) == 0 {
		return nil
	}
	require.Len(t, rows, 1)
	return rows[0]
}

func TestInteractionHandlerAccumulatesNetDailyLikes(t *testing.T) {
	f := newHandlerFixture(t)
	h := NewInteractionHandler(f.contents, f.metrics)
	ctx := context.Background()
	at := time.Date(2026, 5, 2, 15, 30, 0, 0, time.UTC)
	row := func(user, kind string) map[string]interface{} {
		return map[string]interface{}{"user_id": user, "content_type": "event", "content_id": "21", "kind": kind}
	}

	require.NoError(t, h.logic(ctx, canalMsg(t, "interactions", INSERT, at.UnixMilli(), row("1", "like"), row("2", "like"))))
	require.NoError(t, h.logic(ctx, canalMsg(t, "interactions", INSERT, at.UnixMilli(), row("1", "bookmark"))))
	require.NoError(t, h.logic(ctx, canalMsg(t, "interactions", DELETE, at.UnixMilli(), row("2", "like"))))

	m := f.dailyFor(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, m)
	assert.Equal(t, int64(1), m.NewLikes)
	assert.Equal(t, int64(1), m.NewBookmarks)
}

func TestInteractionHandlerSkipsBadMessages(t *testing.T) {
	f := newHandlerFixture(t)
	h := NewInteractionHandler(f.contents, f.metrics)
	ctx := context.Background()

	err := h.logic(ctx, canalMsg(t, "user_follows", INSERT, 0, map[string]interface{}{"follower_id": "1"}))
	assert.ErrorIs(t, err, errSkipMessage)

	err = h.logic(ctx, &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.ErrorIs(t, err, errSkipMessage)

	err = h.logic(ctx, canalMsg(t, "interactions", INSERT, 0, map[string]interface{}{"content_type": "podcast", "content_id": "1", "kind": "like"}))
	assert.ErrorIs(t, err, errSkipMessage)

	// 内容已不存在：丢弃但不报错
	err = h.logic(ctx, canalMsg(t, "interactions", INSERT, 0, map[string]interface{}{"content_type": "news", "content_id": "404", "kind": "like"}))
	assert.NoError(t, err)

	assert.NoError(t, h.logic(ctx, canalMsg(t, "interactions", UPDATE, 0, map[string]interface{}{"content_type": "event"})))
}

func TestEngagementHandlerUpdatesCountersAndDaily(t *testing.T) {
	f := newHandlerFixture(t)
	h := NewEngagementHandler(f.contents, f.metrics)
	ctx := context.Background()
	at := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)

	send := func(ev EngagementEvent) error {
		raw, err := json.Marshal(ev)
		require.NoError(t, err)
		return h.logic(ctx, &sarama.ConsumerMessage{Value: raw})
	}
	require.NoError(t, send(EngagementEvent{ContentType: "event", ContentID: 21, Event: EventView, Count: 40, OccurredAt: at}))
	require.NoError(t, send(EngagementEvent{ContentType: "event", ContentID: 21, Event: EventView, OccurredAt: at}))
	require.NoError(t, send(EngagementEvent{ContentType: "event", ContentID: 21, Event: EventShare, OccurredAt: at}))
	require.NoError(t, send(EngagementEvent{ContentType: "event", ContentID: 21, Event: EventComment, Count: 2, OccurredAt: at}))

	content, err := f.contents.GetContentByRef(ctx, f.ref)
	require.NoError(t, err)
	assert.Equal(t, int64(41), content.ViewsCount)
	assert.Equal(t, int64(1), content.SharesCount)
	assert.Equal(t, int64(2), content.CommentsCount)

	m := f.dailyFor(t, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC))
	require.NotNil(t, m)
	assert.Equal(t, int64(41), m.NewViews)
	assert.Equal(t, int64(1), m.NewShares)
	assert.Equal(t, int64(2), m.NewComments)

	assert.ErrorIs(t, send(EngagementEvent{ContentType: "event", ContentID: 21, Event: "like"}), errSkipMessage)
	assert.ErrorIs(t, send(EngagementEvent{ContentType: "event", Event: EventView}), errSkipMessage)
}

type recordingInvalidator struct {
	mu    sync.Mutex
	users []uint64
}

func (r *recordingInvalidator) InvalidateAnalytics(_ context.Context, userID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func TestFollowsHandlerInvalidatesBothSides(t *testing.T) {
	inv := &recordingInvalidator{}
	h := NewFollowsHandler(inv)

	err := h.logic(context.Background(), canalMsg(t, "user_follows", INSERT, 0,
		map[string]interface{}{"follower_id": "3", "following_id": "4"},
		map[string]interface{}{"follower_id": "5", "following_id": "4"},
	))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{3, 4, 5}, inv.users)
}

type markRecorder struct {
	mu     sync.Mutex
	marked []*sarama.ConsumerMessage
}

func (m *markRecorder) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marked = append(m.marked, msg)
}

func TestProcessBatchRetriesThenMarksLast(t *testing.T) {
	msgs := []*sarama.ConsumerMessage{{Offset: 1}, {Offset: 2}, {Offset: 3}}
	var attempts atomic.Int32
	logic := func(_ context.Context, m *sarama.ConsumerMessage) error {
		switch m.Offset {
		case 2:
			if attempts.Add(1) < 3 {
				return errors.New("db down")
			}
			return nil
		case 3:
			return errSkipMessage
		default:
			return nil
		}
	}

	rec := &markRecorder{}
	processBatch(context.Background(), rec, msgs, logic)

	assert.Equal(t, int32(3), attempts.Load())
	require.Len(t, rec.marked, 1)
	assert.Equal(t, int64(3), rec.marked[0].Offset)
}

func TestProcessBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &markRecorder{}
	done := make(chan struct{})
	go func() {
		processBatch(ctx, rec, []*sarama.ConsumerMessage{{Offset: 1}}, func(context.Context, *sarama.ConsumerMessage) error {
			return errors.New("always failing")
		})
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processBatch did not return after cancel")
	}
	assert.Empty(t, rec.marked)
}
