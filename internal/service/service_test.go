package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"Applyhub/internal/model"
	"Applyhub/internal/pkg/database"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "applyhub.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite 单写者，并发用例串行化到一个连接上
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

type recordedNotice struct {
	app     *model.Application
	from    model.ApplicationStatus
	actorID uint64
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []recordedNotice
}

func (f *fakeNotifier) NotifyStatusChange(_ context.Context, app *model.Application, from model.ApplicationStatus, actorID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, recordedNotice{app: app.Clone(), from: from, actorID: actorID})
}

func (f *fakeNotifier) all() []recordedNotice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedNotice(nil), f.notices...)
}

type fakeInvalidator struct {
	mu    sync.Mutex
	users []uint64
}

func (f *fakeInvalidator) InvalidateAnalytics(_ context.Context, userID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
}

func (f *fakeInvalidator) all() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.users...)
}
