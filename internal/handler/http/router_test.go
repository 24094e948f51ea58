package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brands-faas/pkg/health"

	"github.com/utafrali/brands-faas/internal/catalog"
	"github.com/utafrali/brands-faas/internal/config"
	"github.com/utafrali/brands-faas/internal/function"
	"github.com/utafrali/brands-faas/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:        "development",
		FunctionName:       "brands-list",
		HTTPPort:           3000,
		StaticDir:          t.TempDir(),
		CORSAllowedOrigins: []string{"*"},
		PprofAllowedCIDRs:  []string{"10.0.0.0/8"},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	log := discardLogger()
	svc := service.NewBrandService(catalog.Default(), nil, log)
	fns := Functions{
		Brands: function.NewBrands(svc, function.WithLogger(log), function.WithMaxLimit(cfg.BrandsMaxLimit)),
		Info:   function.NewInfo(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewRouter(ctx, cfg, fns, health.NewHandler(), log)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

// ---------------------------------------------------------------------------
// Function routes
// ---------------------------------------------------------------------------

func TestRouter_APIBrands(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/api/brands?category=Technology")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	data := decode(t, rec)["data"].(map[string]any)
	brands := data["brands"].([]any)
	require.Len(t, brands, 2)
	assert.Equal(t, "Apple", brands[0].(map[string]any)["name"])
}

func TestRouter_APIRootIsList(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	for _, target := range []string{"/api", "/api/"} {
		rec := do(t, h, http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Contains(t, decode(t, rec), "data", target)
	}
}

func TestRouter_APIBrandNotFound(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/api/brands/999")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Brand not found", body["error"])
	assert.Equal(t, "No brand found with ID 999", body["message"])
}

func TestRouter_APIIndex(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/api/whatever")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OpenFaaS Brands API", decode(t, rec)["message"])
}

func TestRouter_MaxLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.BrandsMaxLimit = 2
	h := newTestRouter(t, cfg)

	rec := do(t, h, http.MethodGet, "/api/brands?limit=50")

	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Len(t, data["brands"], 2)
}

func TestRouter_GatewayRoutes(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/function/brands-list/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(6), decode(t, rec)["data"].(map[string]any)["count"])

	rec = do(t, h, http.MethodGet, "/function/get-info?name=Alice")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Hello, Alice!", body["personalMessage"])
	assert.Equal(t, "/", body["path"])
}

func TestRouter_PostBodyForwarded(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	req := httptest.NewRequest(http.MethodPost, "/function/get-info", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "POST", body["method"])
	headers := body["request"].(map[string]any)["headers"].(map[string]any)
	assert.Equal(t, "application/json", headers["contentType"])
}

// ---------------------------------------------------------------------------
// CORS, health, metrics, fallbacks
// ---------------------------------------------------------------------------

func TestRouter_Preflight(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodOptions, "/api/brands")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready").Code)
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, testConfig(t))
	do(t, h, http.MethodGet, "/api/brands")

	rec := do(t, h, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "brands_http_requests_total")
	assert.Contains(t, rec.Body.String(), "faas_invocations_total")
}

func TestRouter_PprofRestricted(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/debug/pprof/")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_NotFound(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodGet, "/brands")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Not Found", body["error"])
	assert.Equal(t, "API endpoints must start with /api/", body["message"])
	assert.Len(t, body["availableEndpoints"], 5)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, testConfig(t))

	rec := do(t, h, http.MethodPost, "/health/live")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "method not allowed", body["error"])
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := newTestRouter(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/brands").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/brands").Code)
}

// ---------------------------------------------------------------------------
// Static files
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestRouter_StaticFile(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, cfg.StaticDir, "images/logo.svg", "<svg/>")
	writeFile(t, cfg.StaticDir, "assets/app.css", "body{}")
	writeFile(t, cfg.StaticDir, "clients/sdk.js", "export {}")
	h := newTestRouter(t, cfg)

	tests := []struct {
		target      string
		contentType string
		body        string
	}{
		{target: "/images/logo.svg", contentType: "image/svg+xml", body: "<svg/>"},
		{target: "/assets/app.css", contentType: "text/css; charset=utf-8", body: "body{}"},
		{target: "/clients/sdk.js", contentType: "text/javascript; charset=utf-8", body: "export {}"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestRouter_StaticMissing(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.StaticDir, "images", "sub"), 0o755))
	h := newTestRouter(t, cfg)

	for _, target := range []string{"/images/nope.png", "/images/sub", "/assets/../../etc/passwd"} {
		rec := do(t, h, http.MethodGet, target)

		require.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Empty(t, rec.Header().Get("Cache-Control"), target)
	}
	rec := do(t, h, http.MethodGet, "/images/nope.png")
	assert.JSONEq(t, `{"error":"File not found"}`, rec.Body.String())
}

func TestStaticHandler_MissingRoot(t *testing.T) {
	h := NewStaticHandler(filepath.Join(t.TempDir(), "absent"), discardLogger())

	rec := do(t, h, http.MethodGet, "/images/a.png")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticHandler_ConditionalGet(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "images/a.png", "png")
	h := NewStaticHandler(dir, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/images/a.png", nil)
	req.Header.Set("If-Modified-Since", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("a/B.PNG"))
	assert.Equal(t, "application/json", contentType("data.json"))
	assert.Equal(t, "application/octet-stream", contentType("blob.unknownext"))
}
