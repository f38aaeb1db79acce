package repository

import (
	"path/filepath"
	"testing"
	"time"

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

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func utcDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newDraft(applicantID, opportunityID uint64) *model.Application {
	return &model.Application{
		ApplicantID:   applicantID,
		OpportunityID: opportunityID,
		Status:        model.StatusDraft,
		FullName:      "Ada Obi",
		Email:         "ada@example.com",
	}
}
