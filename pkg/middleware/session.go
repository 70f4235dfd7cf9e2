package middleware

import (
	"net/http"

	"github.com/platinummonkey/peekguard/pkg/auth"
	"github.com/platinummonkey/peekguard/pkg/contextkeys"
	"github.com/platinummonkey/peekguard/pkg/httputil"
)

// SessionResolver looks up a live session by ID
type SessionResolver interface {
	Session(id string) (*auth.Session, bool)
}

// SessionMiddleware attaches the identity of the request's session, if any
func SessionMiddleware(resolver SessionResolver, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.SessionIDFromRequest(r, cookieName)
			if session, ok := resolver.Session(id); ok {
				ctx := contextkeys.WithIdentity(r.Context(), session.Identity)
				ctx = contextkeys.WithSessionID(ctx, session.ID)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession responds 401 unless SessionMiddleware found a session
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contextkeys.GetIdentity(r.Context()) == "" {
			httputil.WriteUnauthorized(w, auth.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
