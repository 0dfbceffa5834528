package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"storecart/internal/config"
	"storecart/internal/http/handlers"
	"storecart/internal/repos"
	"storecart/internal/services"
	"storecart/web"
)

const testPassword = "Passw0rd!"

type harness struct {
	t    *testing.T
	app  *fiber.App
	db   *sqlx.DB
	deps *handlers.Deps
}

type option func(*config.Config, *services.Notifier, **redis.Client)

func withBackend(b string) option {
	return func(cfg *config.Config, _ *services.Notifier, _ **redis.Client) { cfg.CartBackend = b }
}

func withRedis(rdb *redis.Client) option {
	return func(cfg *config.Config, _ *services.Notifier, r **redis.Client) {
		cfg.CartBackend = config.BackendRedis
		*r = rdb
	}
}

func withNotifier(n services.Notifier) option {
	return func(_ *config.Config, out *services.Notifier, _ **redis.Client) { *out = n }
}

func withSecret(s string) option {
	return func(cfg *config.Config, _ *services.Notifier, _ **redis.Client) { cfg.JWTSecret = s }
}

// newHarness builds the full route table over a fresh in-memory database.
func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", CartBackend: config.BackendSQLite, CartTTL: time.Hour}
	var notifier services.Notifier
	var rdb *redis.Client
	for _, o := range opts {
		o(&cfg, &notifier, &rdb)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{Views: web.Engine()})
	app.Use(requestid.New())
	deps := handlers.NewDeps(db, cfg, rdb, notifier)
	handlers.Register(app, deps)
	return &harness{t: t, app: app, db: db, deps: deps}
}

type call struct {
	method  string
	path    string
	body    any
	cookies []*http.Cookie
	bearer  string
}

func (h *harness) do(c call) *http.Response {
	h.t.Helper()
	var rdr io.Reader
	if c.body != nil {
		b, err := json.Marshal(c.body)
		require.NoError(h.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(c.method, c.path, rdr)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	return resp
}

// guest opens a session and returns its sid cookie.
func (h *harness) guest() *http.Cookie {
	h.t.Helper()
	resp := h.do(call{method: http.MethodGet, path: "/api/v1/cart"})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	sid := cookie(resp, "sid")
	require.NotNil(h.t, sid, "sid cookie not issued")
	return &http.Cookie{Name: "sid", Value: sid.Value}
}

// login signs in email on the sid session and returns the login response body.
func (h *harness) login(sid *http.Cookie, email string) loginResp {
	h.t.Helper()
	resp := h.do(call{
		method:  http.MethodPost,
		path:    "/login",
		body:    map[string]string{"email": email, "password": testPassword},
		cookies: []*http.Cookie{sid},
	})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	var out loginResp
	decode(h.t, resp, &out)
	return out
}

type loginResp struct {
	User struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"user"`
	Avatar string `json:"avatar"`
	Token  string `json:"token"`
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuf) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	buf := &lockedBuf{}
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.b.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil && e.Action != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) bool {
	for _, e := range entries {
		if e.Action == action {
			return true
		}
	}
	return false
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
