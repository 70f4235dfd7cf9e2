package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionCookie(t *testing.T) {
	cfg := CookieConfig{Name: "peekguard_session", TTL: time.Hour}
	session := &Session{ID: "abc", ExpiresAt: time.Now().Add(time.Hour)}

	cookie := SessionCookie(cfg, session)
	assert.Equal(t, "peekguard_session", cookie.Name)
	assert.Equal(t, "abc", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	cleared := ClearCookie(cfg)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestSessionIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, SessionIDFromRequest(req, "peekguard_session"))

	req.AddCookie(&http.Cookie{Name: "peekguard_session", Value: "abc"})
	assert.Equal(t, "abc", SessionIDFromRequest(req, "peekguard_session"))
}
