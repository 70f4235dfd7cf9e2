package eventlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/peekguard/pkg/contextkeys"
)

// withIdentity stands in for the session middleware
func withIdentity(identity string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if identity != "" {
				r = r.WithContext(contextkeys.WithIdentity(r.Context(), identity))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newTestRouter(store Store, identity string) *mux.Router {
	h := NewHandlers(NewRecorder(store, "memory", nil, nil))
	router := mux.NewRouter()
	router.Use(withIdentity(identity))
	h.RegisterPublicRoutes(router)
	h.RegisterRoutes(router)
	return router
}

func TestHandlers_LogEvent(t *testing.T) {
	store := NewMemoryStore()

	t.Run("attributes to session identity", func(t *testing.T) {
		router := newTestRouter(store, "student")
		req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"event":"blur","details":{"reason":"tab_switch"}}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

		events, _ := store.List(context.Background(), "student")
		require.Len(t, events, 1)
		assert.Equal(t, "tab_switch", events[0].Details["reason"])
	})

	t.Run("anonymous without session", func(t *testing.T) {
		router := newTestRouter(store, "")
		req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"event":"heartbeat"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		events, _ := store.List(context.Background(), AnonymousIdentity)
		require.Len(t, events, 1)
		assert.Empty(t, events[0].Details)
	})

	t.Run("missing event", func(t *testing.T) {
		router := newTestRouter(store, "")
		req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"details":{}}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newTestRouter(store, "")
		req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"event":`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlers_ListLogs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "student", KindLoginSuccess, Details{"ip": "127.0.0.1"}))
	require.NoError(t, store.Append(ctx, "other", KindBlur, nil))

	t.Run("only own events", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(store, "student").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Logs []map[string]interface{} `json:"logs"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Logs, 1)
		assert.Equal(t, "login_success", body.Logs[0]["event"])
		assert.Contains(t, body.Logs[0], "time")
		assert.Contains(t, body.Logs[0], "details")
	})

	t.Run("empty list is an array", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(store, "fresh").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

		assert.JSONEq(t, `{"logs":[]}`, rec.Body.String())
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newTestRouter(store, "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated"}`, rec.Body.String())
	})
}

func TestHandlers_ExportLogs(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), "student", KindLogout, nil))
	router := newTestRouter(store, "student")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs/export?format=csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "security-events-student.csv")
	assert.Contains(t, rec.Body.String(), "logout")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs/export?format=xml", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
