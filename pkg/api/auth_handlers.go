package api

import (
	"net/http"

	"github.com/platinummonkey/peekguard/pkg/auth"
	"github.com/platinummonkey/peekguard/pkg/contextkeys"
	"github.com/platinummonkey/peekguard/pkg/httputil"
)

const loginSuccessMessage = "Login successful"

// AuthHandlers serves login, logout and session lookups
type AuthHandlers struct {
	gate   *auth.Gate
	cookie auth.CookieConfig
}

// NewAuthHandlers creates auth handlers issuing cookies per cookie
func NewAuthHandlers(gate *auth.Gate, cookie auth.CookieConfig) *AuthHandlers {
	return &AuthHandlers{gate: gate, cookie: cookie}
}

// login handles POST /api/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	session, err := h.gate.Login(r.Context(), req.Username, req.Password, auth.ClientMeta{
		IP:        httputil.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		httputil.WriteJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Message: auth.GenericFailureMessage,
		})
		return
	}

	// A re-login replaces the previous session
	if prev := contextkeys.GetSessionID(r.Context()); prev != "" {
		h.gate.Sessions().Delete(prev)
	}

	http.SetCookie(w, auth.SessionCookie(h.cookie, session))
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, Message: loginSuccessMessage})
}

// logout handles POST /api/logout
func (h *AuthHandlers) logout(w http.ResponseWriter, r *http.Request) {
	h.gate.Logout(r.Context(), contextkeys.GetSessionID(r.Context()))
	http.SetCookie(w, auth.ClearCookie(h.cookie))
	httputil.WriteOK(w)
}

// session handles GET /api/session
func (h *AuthHandlers) session(w http.ResponseWriter, r *http.Request) {
	session, ok := h.gate.Session(contextkeys.GetSessionID(r.Context()))
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, SessionResponse{Authenticated: false})
		return
	}

	ua := r.UserAgent()
	if ua == "" {
		ua = session.UserAgent
	}
	expires := session.ExpiresAt
	httputil.WriteJSON(w, http.StatusOK, SessionResponse{
		Authenticated: true,
		Username:      session.Identity,
		UserAgent:     ua,
		ExpiresAt:     &expires,
	})
}
