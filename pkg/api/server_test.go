package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/peekguard/pkg/auth"
	"github.com/platinummonkey/peekguard/pkg/client"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/middleware"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

const cookieName = "peekguard_session"

type testEnv struct {
	server *Server
	store  *eventlog.MemoryStore
	clock  *clockwork.FakeClock
}

func newTestEnv(t *testing.T, configure func(*Options)) *testEnv {
	t.Helper()

	users := auth.NewUserStore(bcrypt.MinCost)
	require.NoError(t, users.Add("student", "P@ssw0rd123"))

	clock := clockwork.NewFakeClock()
	store := eventlog.NewMemoryStore(eventlog.WithClock(clock))
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	recorder := eventlog.NewRecorder(store, "memory", nil, metrics)
	sessions := auth.NewSessionStore(100, time.Hour, clock)
	gate := auth.NewGate(users, sessions, recorder, nil, metrics)

	opts := Options{
		Cookie:   auth.CookieConfig{Name: cookieName, TTL: time.Hour},
		Health:   observability.NewHealthChecker(nil, nil),
		Registry: registry,
		Metrics:  metrics,
	}
	if configure != nil {
		configure(&opts)
	}
	return &testEnv{
		server: NewServer(gate, recorder, opts),
		store:  store,
		clock:  clock,
	}
}

func (e *testEnv) start(t *testing.T) *client.Client {
	t.Helper()
	ts := httptest.NewServer(e.server)
	t.Cleanup(ts.Close)
	c, err := client.New(ts.URL)
	require.NoError(t, err)
	return c
}

func kinds(events []eventlog.Event) []eventlog.Kind {
	out := make([]eventlog.Kind, len(events))
	for i, e := range events {
		out[i] = e.Kind
	}
	return out
}

func TestServer_LoginLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.start(t)
	ctx := context.Background()

	info, err := c.Session(ctx)
	require.NoError(t, err)
	assert.False(t, info.Authenticated)

	_, err = c.Logs(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)

	res, err := c.Login(ctx, "student", "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, auth.GenericFailureMessage, res.Message)

	res, err = c.Login(ctx, "nobody", "wrong")
	require.NoError(t, err)
	assert.Equal(t, auth.GenericFailureMessage, res.Message)

	res, err = c.Login(ctx, "student", "P@ssw0rd123")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Login successful", res.Message)

	info, err = c.Session(ctx)
	require.NoError(t, err)
	assert.True(t, info.Authenticated)
	assert.Equal(t, "student", info.Username)
	assert.NotEmpty(t, info.UserAgent)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.Equal(env.clock.Now().Add(time.Hour)))

	require.NoError(t, c.Log(ctx, eventlog.KindBlur, eventlog.Details{"reason": "tab_switch"}))

	logs, err := c.Logs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []eventlog.Kind{eventlog.KindLoginFailed, eventlog.KindLoginSuccess, eventlog.KindBlur}, kinds(logs))
	assert.Equal(t, "bad_password", logs[0].Details["reason"])
	assert.Equal(t, "tab_switch", logs[2].Details["reason"])

	csv, err := c.Export(ctx, eventlog.ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(csv), "\n"))

	require.NoError(t, c.Logout(ctx))

	info, err = c.Session(ctx)
	require.NoError(t, err)
	assert.False(t, info.Authenticated)
	assert.ErrorIs(t, c.Logout(ctx), client.ErrUnauthenticated)

	events, err := env.store.List(ctx, "student")
	require.NoError(t, err)
	assert.Equal(t, eventlog.KindLogout, events[len(events)-1].Kind)

	ghost, err := env.store.List(ctx, "nobody")
	require.NoError(t, err)
	require.Len(t, ghost, 1)
	assert.Equal(t, "user_not_found", ghost[0].Details["reason"])
}

func TestServer_AnonymousLog(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.start(t)
	ctx := context.Background()

	require.NoError(t, c.Log(ctx, eventlog.KindHeartbeat, nil))

	events, err := env.store.List(ctx, eventlog.AnonymousIdentity)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventlog.KindHeartbeat, events[0].Kind)
}

func TestServer_SessionExpires(t *testing.T) {
	env := newTestEnv(t, nil)
	c := env.start(t)
	ctx := context.Background()

	res, err := c.Login(ctx, "student", "P@ssw0rd123")
	require.NoError(t, err)
	require.True(t, res.Success)

	env.clock.Advance(time.Hour + time.Second)

	info, err := c.Session(ctx)
	require.NoError(t, err)
	assert.False(t, info.Authenticated)

	_, err = c.Logs(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthenticated)
}

func TestServer_LoginRateLimited(t *testing.T) {
	limiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig(2, 0), clockwork.NewFakeClock())
	env := newTestEnv(t, func(o *Options) {
		o.LoginLimiter = limiter
		o.RetryAfter = 30 * time.Second
	})
	c := env.start(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Login(ctx, "student", "wrong")
		require.NoError(t, err)
	}
	_, err := c.Login(ctx, "student", "P@ssw0rd123")
	assert.ErrorIs(t, err, client.ErrRateLimited)

	// the rejected attempt never reached the gate
	events, _ := env.store.List(ctx, "student")
	assert.Len(t, events, 2)
}

func TestServer_ClientConfig(t *testing.T) {
	c := newTestEnv(t, nil).start(t)

	tuning, err := c.ClientConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(700), tuning.RevealWindowMS)
	assert.Equal(t, int64(2000), tuning.BlurCooldownMS)
	assert.Equal(t, 1.5, tuning.FastMouseThreshold)
	assert.Equal(t, int64(60000), tuning.HeartbeatIntervalMS)
}

func TestServer_Middleware(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("security and request id headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.JSONEq(t, `{"authenticated":false}`, rec.Body.String())
	})

	t.Run("logout requires a session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})

	t.Run("malformed login body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("session cookie attributes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"username":"student","password":"P@ssw0rd123"}`)
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", body))
		require.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, cookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, 3600, cookies[0].MaxAge)
	})

	t.Run("health and metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "peekguard_http_requests_total")
		assert.Contains(t, rec.Body.String(), "peekguard_login_attempts_total")
	})
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>login</h1>"), 0o644))

	env := newTestEnv(t, func(o *Options) { o.StaticDir = dir })
	ts := httptest.NewServer(env.server)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "login")

	apiResp, err := http.Get(ts.URL + "/api/session")
	require.NoError(t, err)
	defer apiResp.Body.Close()
	assert.Equal(t, "application/json", apiResp.Header.Get("Content-Type"))
}
