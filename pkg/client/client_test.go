package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

// fakeAPI implements just enough of the server to exercise the client
type fakeAPI struct {
	mu     sync.Mutex
	logged []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(v)
	}
	authed := func(r *http.Request) bool {
		c, err := r.Cookie("peekguard_session")
		return err == nil && c.Value == "sid"
	}

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "P@ssw0rd123" {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "peekguard_session", Value: "sid", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Login successful"})
	})
	mux.HandleFunc("/api/logs", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"logs": []map[string]interface{}{
			{"time": "2024-05-01T12:00:00Z", "event": "login_success", "details": map[string]string{"ip": "127.0.0.1"}},
		}})
	})
	mux.HandleFunc("/api/log", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Event string `json:"event"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.logged = append(f.logged, body.Event)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/session", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": true, "username": "student", "ua": "Go-http-client/1.1"})
	})
	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	mux.HandleFunc("/api/logs/export", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("time,identity,event,details\n"))
	})
	mux.HandleFunc("/api/client-config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"revealWindowMs": 700, "fastMouseThreshold": 1.5})
	})
	return mux
}

func (f *fakeAPI) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.logged...)
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	return c, api
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestClient_LoginFlow(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Logs(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	res, err := c.Login(ctx, "student", "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid credentials", res.Message)

	res, err = c.Login(ctx, "student", "P@ssw0rd123")
	require.NoError(t, err)
	assert.True(t, res.Success)

	session, err := c.Session(ctx)
	require.NoError(t, err)
	assert.True(t, session.Authenticated)
	assert.Equal(t, "student", session.Username)

	events, err := c.Logs(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventlog.KindLoginSuccess, events[0].Kind)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), events[0].Time)

	require.NoError(t, c.Logout(ctx))
}

func TestClient_LogoutWithoutSession(t *testing.T) {
	c, _ := newTestClient(t)
	assert.ErrorIs(t, c.Logout(context.Background()), ErrUnauthenticated)
}

func TestClient_ExportAndConfig(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	data, err := c.Export(ctx, eventlog.ExportFormatCSV)
	require.NoError(t, err)
	assert.Contains(t, string(data), "identity")

	cfg, err := c.ClientConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(700), cfg.RevealWindowMS)
	assert.Equal(t, 1.5, cfg.FastMouseThreshold)
}

func TestClient_StatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "student", "x")
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = c.Logs(context.Background())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)
}

func TestEmitter_SendsInBackground(t *testing.T) {
	c, api := newTestClient(t)
	e := NewEmitter(c, 4, nil)

	e.Emit(eventlog.KindBlur, eventlog.Details{"reason": "tab_switch"})
	e.Emit(eventlog.KindHeartbeat, nil)
	require.NoError(t, e.Flush(context.Background()))

	assert.ElementsMatch(t, []string{"blur", "heartbeat"}, api.events())
	require.NoError(t, e.Close(context.Background()))
}

func TestEmitter_SwallowsFailures(t *testing.T) {
	c, err := New("http://127.0.0.1:1")
	require.NoError(t, err)
	e := NewEmitter(c, 1, nil)

	assert.NotPanics(t, func() {
		e.Emit(eventlog.KindBlur, nil)
	})
	require.NoError(t, e.Close(context.Background()))
}
