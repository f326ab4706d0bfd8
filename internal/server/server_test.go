package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/encryptcookie"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aliados/internal/auth"
	"aliados/internal/config"
	"aliados/internal/engine"
	"aliados/internal/metrics"
	"aliados/internal/middleware"
	"aliados/internal/models"
	"aliados/internal/testutil"
)

// TestEncryptCookieSessionRoundTrip verifies that an identity stored in an
// encrypted session cookie survives being replayed across requests.
func TestEncryptCookieSessionRoundTrip(t *testing.T) {
	app := fiber.New()

	// Same order as New: encryptcookie, then session, then handlers.
	app.Use(encryptcookie.New(encryptcookie.Config{
		Key: deriveEncryptionKey("test-secret-that-is-long-enough-for-production"),
	}))
	sessionMiddleware, _ := session.NewWithStore(session.Config{
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})
	app.Use(sessionMiddleware)

	ids := middleware.NewSessionIdentityStore()
	app.Post("/login", func(c fiber.Ctx) error {
		if err := ids.Put(c, &models.Identity{Username: "NEXA", Role: models.RolePartner, HomePartner: "NEXA"}); err != nil {
			return err
		}
		return c.SendString("ok")
	})
	app.Get("/whoami", func(c fiber.Ctx) error {
		id := ids.Get(c)
		if id == nil {
			return c.SendString("")
		}
		return c.SendString(id.Username + "/" + id.HomePartner)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := app.Test(req)
		require.NoError(t, err, "request %d", i)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "NEXA/NEXA", string(body), "request %d", i)
		if next := resp.Cookies(); len(next) > 0 {
			cookies = next
		}
	}
}

func writeViews(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"layouts/main.html": `<html><body>{{embed}}</body></html>`,
		"index.html":        `<div id="welcome">{{.Welcome}}</div>`,
		"error.html":        `<p class="error">{{.Message}}</p>`,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func testConfig(t *testing.T, redisURL string) *config.Config {
	t.Helper()
	dir := writeViews(t)
	return &config.Config{
		Env:                "development",
		BaseURL:            "http://localhost:3000",
		ViewsDir:           dir,
		StaticDir:          dir,
		RedisURL:           redisURL,
		SessionSecret:      "test-secret-that-is-long-enough-for-production",
		SessionIdleTimeout: time.Hour,
		RateLimitMax:       100,
	}
}

type testServer struct {
	srv *Server
	reg *prometheus.Registry
}

func newTestServer(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()
	srv, err := New(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown() })

	store, err := auth.NewFileStore([]config.UserConfig{
		{Username: "CLARO", PasswordHash: testutil.HashPassword(t, "1198"), Role: "partner", HomePartner: "CLARO"},
		{Username: "root", PasswordHash: testutil.HashPassword(t, "toor"), Role: "admin"},
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	stats := metrics.NewMemoryStats()
	rec := metrics.NewRecorder(reg, stats, stats, nil)

	require.NoError(t, srv.RegisterRoutes(t.Context(), Deps{
		Engine:   testutil.NewEngine(t),
		Auth:     auth.NewAuthenticator(store, nil),
		Logins:   rec,
		Gatherer: reg,
	}))
	return &testServer{srv: srv, reg: reg}
}

func (ts *testServer) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := ts.srv.App.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_ChatFlowWithRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	ts := newTestServer(t, testConfig(t, "redis://"+mr.Addr()))

	page := ts.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, fiber.StatusOK, page.StatusCode)
	body, _ := io.ReadAll(page.Body)
	assert.Contains(t, string(body), "Please enter your username and password")

	login := ts.do(t, http.MethodPost, "/chat", `{"message":"CLARO 1198"}`, nil)
	require.Equal(t, fiber.StatusOK, login.StatusCode)
	cookies := login.Cookies()
	assert.Equal(t, engine.Greeting("CLARO"), decode(t, login)["content"])
	assert.NotEmpty(t, mr.Keys(), "session should be stored in redis")

	answer := ts.do(t, http.MethodPost, "/chat", `{"message":"performance 2025"}`, cookies)
	require.Equal(t, fiber.StatusOK, answer.StatusCode)
	out := decode(t, answer)
	assert.Equal(t, "performance", out["intent"])
	assert.Contains(t, out["content"], "CLARO")
	assert.Contains(t, out["html"], "<strong>")

	api := ts.do(t, http.MethodPost, "/api/v1/ask", `{"question":"how close to the goal for ATENTO?"}`, cookies)
	require.Equal(t, fiber.StatusOK, api.StatusCode)
	data := decode(t, api)["data"].(map[string]any)
	assert.Equal(t, "prediction", data["intent"])
	assert.Equal(t, "CLARO", data["partner"])

	forbidden := ts.do(t, http.MethodGet, "/api/v1/partners", "", cookies)
	assert.Equal(t, fiber.StatusForbidden, forbidden.StatusCode)

	health := ts.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, fiber.StatusOK, health.StatusCode)
	h := decode(t, health)
	assert.Equal(t, "ok", h["dependencies"].(map[string]any)["sessions"])
}

func TestServer_APIRequiresIdentity(t *testing.T) {
	ts := newTestServer(t, testConfig(t, ""))

	resp := ts.do(t, http.MethodPost, "/api/v1/ask", `{"question":"performance"}`, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "error", decode(t, resp)["status"])
}

func TestServer_AdminSeesPartners(t *testing.T) {
	ts := newTestServer(t, testConfig(t, ""))

	login := ts.do(t, http.MethodPost, "/chat", `{"message":"root toor"}`, nil)
	require.Equal(t, fiber.StatusOK, login.StatusCode)

	resp := ts.do(t, http.MethodGet, "/api/v1/partners", "", login.Cookies())
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode(t, resp)["data"])
}

func TestServer_ErrorPage(t *testing.T) {
	ts := newTestServer(t, testConfig(t, ""))

	resp := ts.do(t, http.MethodGet, "/does-not-exist", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `class="error"`)
}

func TestServer_Metrics(t *testing.T) {
	ts := newTestServer(t, testConfig(t, ""))

	ts.do(t, http.MethodPost, "/chat", `{"message":"CLARO wrong"}`, nil)

	resp := ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `aliados_logins_total{result="rejected"} 1`)
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.RateLimitMax = 2
	ts := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp := ts.do(t, http.MethodPost, "/chat", `{"message":"hola"}`, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp := ts.do(t, http.MethodPost, "/chat", `{"message":"hola"}`, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	health := ts.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, fiber.StatusOK, health.StatusCode)
}

func TestNew_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(testConfig(t, "redis://"+addr), nil)
	assert.Error(t, err)
}

func TestRateLimitedPaths(t *testing.T) {
	assert.True(t, rateLimited("/chat"))
	assert.True(t, rateLimited("/api/v1/ask"))
	assert.False(t, rateLimited("/"))
	assert.False(t, rateLimited("/healthz"))
	assert.False(t, rateLimited("/static/chat.js"))
}
