package wire

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"Applyhub/internal/api/config"
	"Applyhub/internal/pkg/database"
	"Applyhub/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApplicationWithoutOptionalBackends(t *testing.T) {
	db, err := database.NewGormDB(&config.DBConfig{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "wire.db"),
		MaxIdle:     1,
		MaxOpen:     1,
		AutoMigrate: true,
	})
	require.NoError(t, err)

	cfg := &config.Config{
		Interaction: config.InteractionConfig{LockMode: "local"},
		Cron:        config.CronConfig{ContentMetricSpec: "0 */5 * * * *"},
	}
	app, err := BuildApplication(db, nil, cfg)
	require.NoError(t, err)
	assert.Nil(t, app.KafkaManager)
	require.NoError(t, app.CronMgr.RegisterJobs())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNewLocker(t *testing.T) {
	l, err := newLocker(config.InteractionConfig{})
	require.NoError(t, err)
	assert.IsType(t, &keylock.LocalLocker{}, l)

	l, err = newLocker(config.InteractionConfig{LockMode: "redis", LockTTL: 5, LockTimeout: 100})
	require.NoError(t, err)
	assert.IsType(t, &keylock.RedisLocker{}, l)

	_, err = newLocker(config.InteractionConfig{LockMode: "zookeeper"})
	assert.Error(t, err)
}
