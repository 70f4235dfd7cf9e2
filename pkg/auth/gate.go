package auth

import (
	"context"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// EventRecorder records security events without failing the caller
type EventRecorder interface {
	Record(ctx context.Context, identity string, kind eventlog.Kind, details eventlog.Details) bool
}

// ClientMeta describes the client attempting a login
type ClientMeta struct {
	IP        string
	UserAgent string
}

// Gate performs login and logout and records their security events
type Gate struct {
	users    *UserStore
	sessions *SessionStore
	recorder EventRecorder
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewGate wires a gate. logger and metrics may be nil.
func NewGate(users *UserStore, sessions *SessionStore, recorder EventRecorder, logger *observability.Logger, metrics *observability.Metrics) *Gate {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Gate{
		users:    users,
		sessions: sessions,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Sessions exposes the session store
func (g *Gate) Sessions() *SessionStore {
	return g.sessions
}

// Login verifies credentials and starts a session. Every failure wraps
// ErrInvalidCredentials.
func (g *Gate) Login(ctx context.Context, username, password string, meta ClientMeta) (*Session, error) {
	if err := g.users.Verify(username, password); err != nil {
		reason := failureReason(err)
		g.logger.WithFields(map[string]interface{}{
			"username": username,
			"reason":   reason,
			"ip":       meta.IP,
		}).Warn("Login failed")

		g.recorder.Record(ctx, username, eventlog.KindLoginFailed, eventlog.Details{"reason": reason})
		g.metrics.RecordLogin("failure")
		return nil, err
	}

	session := g.sessions.Create(username, meta.UserAgent)
	g.recorder.Record(ctx, username, eventlog.KindLoginSuccess, eventlog.Details{
		"ip": meta.IP,
		"ua": meta.UserAgent,
	})
	g.metrics.RecordLogin("success")
	g.metrics.SetActiveSessions(g.sessions.Count())

	g.logger.WithField("username", username).Info("Login succeeded")
	return session, nil
}

// Session returns the live session for id
func (g *Gate) Session(id string) (*Session, bool) {
	return g.sessions.Get(id)
}

// Logout destroys the session and records a logout event under the identity
// the session held, or anonymous when there was none. It returns that identity.
func (g *Gate) Logout(ctx context.Context, sessionID string) string {
	var identity string
	if session, ok := g.sessions.Get(sessionID); ok {
		identity = session.Identity
	}

	g.sessions.Delete(sessionID)
	identity = eventlog.NormalizeIdentity(identity)
	g.recorder.Record(ctx, identity, eventlog.KindLogout, nil)
	g.metrics.SetActiveSessions(g.sessions.Count())

	g.logger.WithField("username", identity).Info("Logged out")
	return identity
}
