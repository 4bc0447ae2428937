package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/content/store"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/imaging"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/sessions"
	"github.com/lovestory/lovestory/backend/go-services/internal/users"
)

const (
	testTemplate = "spiderman"
	testEmail    = "peter@example.com"
	testPassword = "with-great-power"
	testCode     = "MJ-2024"
	testSlug     = "peter-and-mj"
)

func init() { gin.SetMode(gin.TestMode) }

type testEnv struct {
	cfg      *config.Config
	router   *gin.Engine
	repo     *projects.MemoryRepo
	projects *projects.Service
	sessions *sessions.Service
	editors  *editor.Registry
	project  *projects.Project
}

// newTestEnv mounts the full HTTP surface over in-memory stores with one
// owner and one unpublished project.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = "handlers-test-secret-32-bytes-xx"
	cfg.JWT.AccessTokenTTL = time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	cfg.Server.PublicBaseURL = "https://love.example.com"
	cfg.Content.TemplateType = testTemplate

	repo := projects.NewMemoryRepo()
	projSvc := projects.NewService(repo)
	userSvc := users.NewService(users.NewMemoryUserRepository())
	sessSvc := sessions.NewService(sessions.NewMemoryRepository())
	reg := editor.NewRegistry(editor.Options{
		Projects: projSvc,
		Cache:    store.NewMemoryCache(),
		Debounce: 5 * time.Millisecond,
	})
	t.Cleanup(reg.Close)

	ctx := context.Background()
	_, err := userSvc.Register(ctx, testEmail, testPassword, "Peter")
	require.NoError(t, err)
	p, err := projSvc.Create(ctx, projects.NewCreate{
		OwnerEmail:   testEmail,
		TemplateType: testTemplate,
		TemplateCode: testCode,
		Slug:         testSlug,
		Seed:         json.RawMessage(`{"letterTitle":"For MJ"}`),
	})
	require.NoError(t, err)

	r := gin.New()
	Mount(r, Deps{
		Config:   cfg,
		Users:    userSvc,
		Projects: projSvc,
		Sessions: sessSvc,
		Editors:  reg,
		Images:   imaging.NewIngestor(nil, 1024),
		Games:    NewGamesHandler(time.Minute, 10),
	})
	return &testEnv{cfg: cfg, router: r, repo: repo, projects: projSvc, sessions: sessSvc, editors: reg, project: p}
}

func (e *testEnv) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	return e.do(method, path, token, r, "application/json")
}

type loginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	Project      struct {
		ID          string `json:"id"`
		Slug        string `json:"slug"`
		IsPublished bool   `json:"isPublished"`
		ShareLink   string `json:"shareLink"`
	} `json:"project"`
}

func (e *testEnv) login(t *testing.T) loginResponse {
	t.Helper()
	w := e.json(http.MethodPost, "/auth/login", "", gin.H{"email": testEmail, "password": testPassword, "templateCode": testCode})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got loginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotEmpty(t, got.AccessToken)
	require.NotEmpty(t, got.RefreshToken)
	return got
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
