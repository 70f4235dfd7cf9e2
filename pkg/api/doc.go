// Package api serves the peekguard HTTP API.
//
// # Endpoints
//
//	POST /api/login           - start a session (rate limited per client IP)
//	POST /api/logout          - end the session
//	GET  /api/session         - describe the current session
//	GET  /api/client-config   - client tuning (reveal window, cool-down, ...)
//	POST /api/log             - append a security event for the caller
//	GET  /api/logs            - list the caller's security events
//	GET  /api/logs/export     - download them as json, csv or ndjson
//	GET  /health/live         - liveness
//	GET  /health/ready        - readiness of the event store backend
//	GET  /metrics             - Prometheus exposition
//
// Anything else falls through to the static front end when one is configured.
//
// # Sessions
//
// The session middleware resolves the session cookie on every request and
// puts the identity into the request context. Handlers never trust an
// identity taken from a request body.
//
// Login failures always answer 401 with the same message whether the user
// is unknown or the password is wrong.
package api
