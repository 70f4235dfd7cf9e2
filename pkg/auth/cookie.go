package auth

import (
	"net/http"
	"time"
)

// CookieConfig controls the session cookie attributes
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// SessionCookie builds the cookie carrying session's ID
func SessionCookie(cfg CookieConfig, session *Session) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds a cookie that removes the session cookie
func ClearCookie(cfg CookieConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionIDFromRequest returns the session cookie value or ""
func SessionIDFromRequest(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
