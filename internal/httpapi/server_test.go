package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/skillbuilder/internal/auth"
	"github.com/example/skillbuilder/internal/catalog"
	"github.com/example/skillbuilder/internal/chatbot"
	"github.com/example/skillbuilder/internal/database"
	"github.com/example/skillbuilder/internal/excel"
	"github.com/example/skillbuilder/internal/forum"
	"github.com/example/skillbuilder/internal/logger"
	"github.com/example/skillbuilder/internal/progress"
	"github.com/example/skillbuilder/internal/quiz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	*Server
	router *gin.Engine
	pauses int
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := database.NewMemoryStore(database.DefaultSeed())
	authSvc, err := auth.NewServiceWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	progressSvc := progress.NewService(store)
	quizSvc := quiz.NewService(store)
	svc := Services{
		Catalog:   catalog.NewService(store),
		Progress:  progressSvc,
		Forum:     forum.NewService(store),
		Quiz:      quizSvc,
		Auth:      authSvc,
		Tokens:    auth.NewTokenIssuer("test-secret", time.Hour),
		Responder: chatbot.NewResponderWithSource(rand.NewSource(1)),
		Reporter:  excel.NewReporter(progressSvc, quizSvc),
	}
	cfg := Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		ChatMinDelay:   time.Second,
		ChatMaxDelay:   2 * time.Second,
	}
	ts := &testServer{Server: New(svc, cfg, logger.Nop())}
	ts.pause = func(context.Context, time.Duration) error {
		ts.pauses++
		return nil
	}
	ts.router = ts.Router()
	return ts
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
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
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) signIn(t *testing.T) string {
	t.Helper()
	rec := ts.request(t, http.MethodPost, "/api/auth/signin", "",
		map[string]string{"email": "test@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/auth/signin", "",
		map[string]string{"email": "test@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode[ErrorEnvelope](t, rec).Error.Code)

	token := ts.signIn(t)
	rec = ts.request(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "user-1", me["id"])
	assert.Equal(t, "testuser", me["username"])
}

func TestSignUp(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/auth/signup", "",
		map[string]string{"username": "alice", "email": "alice@example.com", "password": "secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[authResponse](t, rec)
	assert.Equal(t, "user-2", resp.User.ID)

	rec = ts.request(t, http.MethodPost, "/api/auth/signup", "",
		map[string]string{"username": "bob", "email": "ALICE@example.com", "password": "secret"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/auth/signup", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodGet, "/api/domains", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 4)

	rec = ts.request(t, http.MethodGet, "/api/domains/9", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/domains/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/levels", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	rec = ts.request(t, http.MethodGet, "/api/domains/1/levels/1/modules", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	modules := decode[[]moduleResponse](t, rec)
	require.Len(t, modules, 3)
	assert.Equal(t, []string{catalog.StatusCompleted, catalog.StatusCompleted, catalog.StatusInProgress},
		[]string{modules[0].Status, modules[1].Status, modules[2].Status})

	rec = ts.request(t, http.MethodGet, "/api/domains/1/levels/3/modules", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]moduleResponse](t, rec))
}

func TestProgress(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodGet, "/api/progress", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[progressResponse](t, rec)
	assert.Equal(t, 8, resp.Stats.TotalModules)
	assert.Equal(t, 38, resp.Stats.CompletionPercentage)
	require.Len(t, resp.Domains, 4)
	assert.Equal(t, 50, resp.Domains[0].Percentage)

	rec = ts.request(t, http.MethodPut, "/api/progress/4", token, map[string]bool{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	record := decode[map[string]any](t, rec)
	assert.Equal(t, true, record["is_completed"])
	assert.NotNil(t, record["completed_at"])

	rec = ts.request(t, http.MethodGet, "/api/progress", token, nil)
	assert.Equal(t, 50, decode[progressResponse](t, rec).Stats.CompletionPercentage)

	rec = ts.request(t, http.MethodPut, "/api/progress/99", token, map[string]bool{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodPut, "/api/progress/4", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportDownload(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodGet, "/api/report", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="progress-testuser-`)
	assert.NotZero(t, rec.Body.Len())
}

func TestChat(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodPost, "/api/chat", token, map[string]string{"message": "Hello there"})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[chatResponse](t, rec)
	assert.Equal(t, chatbot.CategoryGreeting, resp.Category)
	assert.Contains(t, chatbot.Responses(chatbot.CategoryGreeting), resp.Reply.Content)
	assert.Equal(t, chatbot.SenderBot, resp.Reply.Sender)
	assert.Equal(t, 1, ts.pauses)

	rec = ts.request(t, http.MethodPost, "/api/chat", token, map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, ts.pauses, "blank messages are rejected without the typing delay")

	rec = ts.request(t, http.MethodGet, "/api/chat", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]chatbot.Message](t, rec)
	require.Len(t, history, 3)
	assert.Equal(t, chatbot.WelcomeMessage, history[0].Content)
	assert.Equal(t, "Hello there", history[1].Content)
}

func TestForum(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodGet, "/api/forum/posts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	posts := decode[[]forum.PostSummary](t, rec)
	require.Len(t, posts, 2)
	assert.Equal(t, "Web Development", posts[0].DomainName)

	rec = ts.request(t, http.MethodGet, "/api/forum/posts?domain_id=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/forum/posts", token,
		map[string]any{"title": "Docker volumes", "content": "How do I persist data?", "domain_id": 4})
	require.Equal(t, http.StatusCreated, rec.Code)
	post := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, post["id"])
	assert.Equal(t, "user-1", post["user_id"])

	rec = ts.request(t, http.MethodPost, "/api/forum/posts", token, map[string]any{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/forum/posts", token,
		map[string]any{"title": "t", "content": "c", "domain_id": 42})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/forum/posts/3/comments", token, map[string]string{"content": "Use named volumes"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/forum/posts/3", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[forum.Thread](t, rec)
	require.NotNil(t, thread.Domain)
	assert.Equal(t, "DevOps", thread.Domain.Name)
	require.Len(t, thread.Comments, 1)
	assert.Equal(t, "Use named volumes", thread.Comments[0].Content)

	rec = ts.request(t, http.MethodGet, "/api/forum/posts/99", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuizzes(t *testing.T) {
	ts := newTestServer(t)
	token := ts.signIn(t)

	rec := ts.request(t, http.MethodGet, "/api/modules/1/quizzes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "is_correct")
	quizzes := decode[[]quizView](t, rec)
	require.Len(t, quizzes, 1)
	assert.Len(t, quizzes[0].Questions, 2)

	rec = ts.request(t, http.MethodPost, "/api/quizzes/1/submit", token, map[string][]int64{"answers": {1, 6}})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.EqualValues(t, 50, decode[map[string]any](t, rec)["score"])

	rec = ts.request(t, http.MethodPost, "/api/quizzes/1/submit", token, map[string][]int64{"answers": {1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/quizzes/9/submit", token, map[string][]int64{"answers": {1}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/quizzes/results", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/domains", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "GET"))
}
