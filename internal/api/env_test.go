package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/db"
	"devconnect/internal/logging"
	"devconnect/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const testPassword = "secret1"

type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	stores *db.Stores
	srv    *httptest.Server
	users  *user.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()

	stores, err := db.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	t.Cleanup(func() { _ = stores.Close() })

	r := SetupRouter(cfg, logging.Discard(), stores, nil, prometheus.NewRegistry())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{t: t, cfg: cfg, stores: stores, srv: srv, users: user.NewStore(stores.Users)}
}

type testClient struct {
	env  *testEnv
	http *http.Client
	jar  *cookiejar.Jar
}

func (e *testEnv) newClient() *testClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		e.t.Fatalf("cookie jar: %v", err)
	}
	return &testClient{env: e, http: &http.Client{Jar: jar}, jar: jar}
}

func (c *testClient) cookie(name string) string {
	u, _ := url.Parse(c.env.srv.URL)
	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// csrfToken returns the current token, fetching one when the jar has none.
func (c *testClient) csrfToken() string {
	if tok := c.cookie(auth.CSRFCookie); tok != "" {
		return tok
	}
	resp, _ := c.request(http.MethodGet, "/api/auth/csrf", nil, false)
	if resp.StatusCode != http.StatusOK {
		c.env.t.Fatalf("csrf endpoint returned %d", resp.StatusCode)
	}
	return c.cookie(auth.CSRFCookie)
}

// do sends body as JSON and decodes the JSON response. Mutating requests carry
// the CSRF header.
func (c *testClient) do(method, path string, body any) (*http.Response, map[string]any) {
	return c.request(method, path, body, method != http.MethodGet)
}

func (c *testClient) request(method, path string, body any, withCSRF bool) (*http.Response, map[string]any) {
	t := c.env.t
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	var token string
	if withCSRF {
		token = c.csrfToken()
	}
	req, err := http.NewRequestWithContext(context.Background(), method, c.env.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.CSRFHeader, token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v: %s", method, path, err, raw)
		}
	} else if len(raw) > 0 {
		out["_raw"] = string(raw)
	}
	return resp, out
}

func (c *testClient) mustDo(status int, method, path string, body any) map[string]any {
	c.env.t.Helper()
	resp, out := c.do(method, path, body)
	if resp.StatusCode != status {
		c.env.t.Fatalf("%s %s: expected %d, got %d: %v", method, path, status, resp.StatusCode, out)
	}
	return out
}

// signup registers and logs in a fresh user, returning its client and id.
func (e *testEnv) signup(username string) (*testClient, uint) {
	e.t.Helper()
	c := e.newClient()
	c.mustDo(http.StatusCreated, http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: username, Email: username + "@example.com", Password: testPassword,
	})
	out := c.mustDo(http.StatusOK, http.MethodPost, "/api/auth/login", LoginRequest{Username: username, Password: testPassword})
	return c, uint(out["user"].(map[string]any)["id"].(float64))
}

// admin seeds an admin account and logs it in.
func (e *testEnv) admin() (*testClient, uint) {
	e.t.Helper()
	if _, err := user.SeedAdmin(context.Background(), e.users, user.AdminSeed{
		Username: "root", Email: "root@localhost", Password: "admin123",
	}, logging.Discard()); err != nil {
		e.t.Fatalf("seed admin: %v", err)
	}
	c := e.newClient()
	out := c.mustDo(http.StatusOK, http.MethodPost, "/api/auth/login", LoginRequest{Username: "root", Password: "admin123"})
	return c, uint(out["user"].(map[string]any)["id"].(float64))
}

func errorMessage(out map[string]any) string {
	e, _ := out["error"].(map[string]any)
	msg, _ := e["message"].(string)
	return msg
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

// list GETs path and decodes a JSON array response.
func (c *testClient) list(path string) []map[string]any {
	t := c.env.t
	t.Helper()
	resp, out := c.do(http.MethodGet, path, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: expected 200, got %d: %v", path, resp.StatusCode, out)
	}
	var items []map[string]any
	raw, _ := out["_raw"].(string)
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("decode list %s: %v: %s", path, err, raw)
	}
	return items
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
