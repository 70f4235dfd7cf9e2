package api

import "time"

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the body returned by POST /api/login
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionResponse is the body of GET /api/session
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	UserAgent     string     `json:"ua,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}
