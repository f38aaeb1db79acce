package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"Applyhub/internal/api/middleware"
	"Applyhub/internal/model"
	"Applyhub/internal/pkg/consts"
	"Applyhub/internal/pkg/database"
	"Applyhub/internal/pkg/keylock"
	"Applyhub/internal/pkg/security"
	"Applyhub/internal/repository"
	"Applyhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router  *gin.Engine
	db      *gorm.DB
	opps    repository.OpportunityRepo
	content repository.ContentRepo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "handler.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	appRepo := repository.NewApplicationRepo(db)
	oppRepo := repository.NewOpportunityRepo(db)
	contentRepo := repository.NewContentRepo(db)
	analyticsSvc := service.NewAnalyticsService(contentRepo, repository.NewContentMetricRepo(db), appRepo,
		repository.NewUserFollowRepo(db), time.Minute, 10)
	sysBoxSvc := service.NewSysBoxService(nil)

	apps := NewApplicationHandler(service.NewApplicationService(appRepo, oppRepo, sysBoxSvc, analyticsSvc))
	interactions := NewInteractionHandler(service.NewInteractionService(repository.NewInteractionRepo(db), contentRepo,
		keylock.NewLocalLocker(), analyticsSvc))
	analytics := NewAnalyticsHandler(analyticsSvc)
	sysBox := NewSysBoxHandler(sysBoxSvc)

	r := gin.New()
	g := r.Group("/api", middleware.AuthMiddleware())
	g.POST("/applications", apps.CreateApplication)
	g.GET("/applications/self", apps.ListMyApplications)
	g.GET("/applications/:id", apps.GetApplication)
	g.PATCH("/applications/:id/status", apps.TransitionStatus)
	g.GET("/applications/opportunity/:opportunity_id", apps.ListByOpportunity)
	g.POST("/interactions/toggle", interactions.Toggle)
	g.GET("/interactions/state", interactions.GetState)
	g.GET("/interactions/bookmarks", interactions.ListBookmarks)
	g.GET("/analytics", analytics.GetAnalytics)
	g.GET("/sysbox/unread", sysBox.GetUnreadCount)

	return &testServer{router: r, db: db, opps: oppRepo, content: contentRepo}
}

func (s *testServer) call(t *testing.T, method, path string, userID uint64, role string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	token, err := security.GenerateToken(userID, []string{role})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestApplicationLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.opps.CreateOpportunity(context.Background(), &model.Opportunity{
		ID: 5, OwnerID: 77, Title: "Data Analyst", OpportunityType: "job",
	}))

	code, env := s.call(t, http.MethodPost, "/api/applications", 1, consts.RoleApplicant, map[string]any{
		"opportunity_id": 5, "full_name": "Ada Obi", "email": "ada@example.com", "submit": true,
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var created struct {
		ID     uint64 `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "submitted", created.Status)

	code, _ = s.call(t, http.MethodPost, "/api/applications", 1, consts.RoleApplicant, map[string]any{
		"opportunity_id": 5, "full_name": "Ada Obi", "email": "ada@example.com",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.call(t, http.MethodPost, "/api/applications", 1, consts.RoleApplicant, map[string]any{
		"opportunity_id": 5, "full_name": "Ada Obi", "email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	path := "/api/applications/" + strconv.FormatUint(created.ID, 10)
	code, _ = s.call(t, http.MethodPatch, path+"/status", 1, consts.RoleApplicant, map[string]any{
		"target_status": "under_review",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.call(t, http.MethodPatch, path+"/status", 50, consts.RoleReviewer, map[string]any{
		"target_status": "under_review", "expected_status": "submitted",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.call(t, http.MethodPatch, path+"/status", 50, consts.RoleReviewer, map[string]any{
		"target_status": "shortlisted", "expected_status": "submitted",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = s.call(t, http.MethodPatch, path+"/status", 50, consts.RoleReviewer, map[string]any{
		"target_status": "draft",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = s.call(t, http.MethodGet, path, 2, consts.RoleApplicant, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.call(t, http.MethodGet, "/api/applications/999", 1, consts.RoleApplicant, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.call(t, http.MethodGet, "/api/applications/abc", 1, consts.RoleApplicant, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.call(t, http.MethodGet, "/api/applications/self", 1, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "under_review", mine[0]["status"])

	code, _ = s.call(t, http.MethodGet, "/api/applications/opportunity/5", 2, consts.RoleApplicant, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, env = s.call(t, http.MethodGet, "/api/applications/opportunity/5?page=1&page_size=10", 77, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, _ = s.call(t, http.MethodGet, "/api/applications/opportunity/5?page_size=1000", 50, consts.RoleReviewer, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestInteractionToggleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.content.CreateContent(context.Background(), &model.Content{
		ID: 3, ContentType: model.ContentEvent, UserID: 40, Title: "Career fair", PublishedAt: time.Now(),
	}))

	toggle := map[string]any{"content_type": "event", "content_id": 3, "kind": "bookmark"}
	code, env := s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant, toggle)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.JSONEq(t, `{"active":true}`, string(env.Data))

	code, env = s.call(t, http.MethodGet, "/api/interactions/state?content_type=event&content_id=3", 9, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":false,"bookmarked":true}`, string(env.Data))

	code, env = s.call(t, http.MethodGet, "/api/interactions/bookmarks", 9, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code)
	var bookmarks []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &bookmarks))
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "Career fair", bookmarks[0]["title"])

	code, env = s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant, toggle)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"active":false}`, string(env.Data))

	code, _ = s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant,
		map[string]any{"content_type": "video", "content_id": 3, "kind": "like"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant,
		map[string]any{"content_type": "event", "content_id": 3, "kind": "share"})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant,
		map[string]any{"content_type": "news", "content_id": 404, "kind": "like"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAnalyticsAndSysBoxOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, env := s.call(t, http.MethodGet, "/api/analytics", 1, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var bundle map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &bundle))
	assert.Equal(t, "30days", bundle["period"])

	code, _ = s.call(t, http.MethodGet, "/api/analytics?period=weekly", 1, consts.RoleApplicant, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = s.call(t, http.MethodGet, "/api/sysbox/unread", 1, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"unread_count":0}`, string(env.Data))
}

type countingJob struct {
	ran chan struct{}
}

func (j *countingJob) Run() {
	j.ran <- struct{}{}
}

func TestTriggerContentMetric(t *testing.T) {
	job := &countingJob{ran: make(chan struct{}, 1)}
	r := gin.New()
	r.POST("/jobs/content-metric", NewJobHandler(job).TriggerContentMetric)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs/content-metric", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	select {
	case <-job.ran:
	case <-time.After(time.Second):
		t.Fatal("job was not triggered")
	}
}

func TestInteractionToggleFailureReturnsRestoredState(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.content.CreateContent(context.Background(), &model.Content{
		ID: 5, ContentType: model.ContentNews, UserID: 40, Title: "Grant round", PublishedAt: time.Now(),
	}))
	require.NoError(t, s.db.Exec(`CREATE TRIGGER interactions_reject BEFORE INSERT ON interactions
		BEGIN SELECT RAISE(ABORT, 'disk full'); END`).Error)

	code, env := s.call(t, http.MethodPost, "/api/interactions/toggle", 9, consts.RoleApplicant,
		map[string]any{"content_type": "news", "content_id": 5, "kind": "like"})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, http.StatusServiceUnavailable, env.Code)
	assert.JSONEq(t, `{"active":false}`, string(env.Data))

	code, env = s.call(t, http.MethodGet, "/api/interactions/state?content_type=news&content_id=5", 9, consts.RoleApplicant, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"liked":false,"bookmarked":false}`, string(env.Data))
}
