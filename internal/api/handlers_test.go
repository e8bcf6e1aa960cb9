package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"devconnect/internal/config"
	"devconnect/internal/logging"
	"devconnect/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func TestHealthHandler_ReturnsOk(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", healthHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "ok") {
		t.Errorf("expected response to contain 'ok', got: %s", w.Body.String())
	}
}

func TestSetupRouter_BasicRoutes(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient()

	resp, _ := c.do(http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health should return 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Errorf("expected a request id header")
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("expected security headers on every response")
	}
	if resp.Header.Get("Content-Security-Policy") != "" {
		t.Errorf("no CSP should be sent")
	}

	resp, out := c.do(http.MethodGet, "/api/nope", nil)
	if resp.StatusCode != http.StatusNotFound || errorMessage(out) != "Route not found" {
		t.Errorf("expected JSON 404, got %d %v", resp.StatusCode, out)
	}
}

func TestSetupRouter_SessionRequired(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient()
	for _, path := range []string{"/api/auth/me", "/api/gigs", "/api/notifications/unread", "/api/users/1"} {
		resp, out := c.do(http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s without session: expected 401, got %d %v", path, resp.StatusCode, out)
		}
	}
}

func TestRequestID_Propagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ctxRequestID)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("expected incoming request id to be kept, got %q", w.Body.String())
	}
}

func TestCORS_DevelopmentReflectsOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	r := gin.New()
	r.Use(corsPolicy(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://elsewhere.test")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://elsewhere.test" {
		t.Errorf("expected origin to be reflected, got %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("expected credentials to be allowed")
	}
}

func TestCORS_ProductionRestrictsOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.Server.Env = config.EnvProduction
	cfg.Server.FrontendURL = "https://devconnect.example"
	r := gin.New()
	r.Use(corsPolicy(cfg), securityHeaders(true))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected foreign origin to be refused, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "https://devconnect.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://devconnect.example" {
		t.Errorf("expected frontend origin to be allowed, got %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Errorf("expected HSTS in production")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	env := newTestEnv(t)
	r := SetupRouter(env.cfg, logging.Discard(), env.stores, nil, reg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	if !contains(w.Body.String(), "http_requests_total") {
		t.Errorf("expected request counter in metrics output")
	}
}
