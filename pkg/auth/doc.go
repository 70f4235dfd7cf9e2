// Package auth is the session gate of the login demo: it verifies credentials
// against bcrypt hashes, issues TTL-bound sessions and records the
// login_success, login_failed and logout security events.
//
// # Login
//
//	gate := auth.NewGate(users, sessions, recorder, logger, metrics)
//	session, err := gate.Login(ctx, "student", "P@ssw0rd123", auth.ClientMeta{IP: ip, UserAgent: ua})
//	if errors.Is(err, auth.ErrInvalidCredentials) {
//		// respond with auth.GenericFailureMessage, whatever the cause
//	}
//	http.SetCookie(w, auth.SessionCookie(cfg, session))
//
// Unknown usernames and wrong passwords produce the same client-facing
// failure. The cause is only visible in the login_failed event details
// (reason user_not_found or bad_password).
//
// # Sessions
//
// Sessions live in an expirable LRU keyed by a random UUID. A session whose
// ExpiresAt has passed is treated as absent even before the cache evicts it.
//
// # Logout
//
// Logout resolves the identity before destroying the session so the logout
// event is attributed to the user who left.
package auth
