// Package middleware provides the session and rate limiting middleware of the
// peekguard API.
//
// SessionMiddleware resolves the session cookie and places the identity and
// session ID on the request context. RequireSession rejects requests without
// one:
//
//	router.Use(middleware.SessionMiddleware(gate, "peekguard_session"))
//	protected := router.NewRoute().Subrouter()
//	protected.Use(middleware.RequireSession)
//
// RateLimitMiddleware throttles a route per client IP using any Limiter: the
// in-memory token bucket RateLimiter, or DistributedRateLimiter backed by
// Redis when several instances share one limit. Limiter errors fail open.
package middleware
