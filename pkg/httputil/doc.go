// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helper functions for JSON encoding/decoding, error responses,
// client address extraction, and the common middleware every peekguard route runs
// behind.
//
// # Response Helpers
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteOK(w)                       // {"ok": true}
//	httputil.WriteUnauthorized(w, "unauthenticated")
//	httputil.SetAttachment(w, "events.csv", "text/csv")
//
// # Request Parsing
//
//	var req LogRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	ip := httputil.ClientIP(r)
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.SecurityHeadersMiddleware,
//		httputil.MaxBytesMiddleware(64*1024),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Session and rate limiting middleware
package httputil
