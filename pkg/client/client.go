package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

var (
	// ErrUnauthenticated means the server has no session for this client
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrRateLimited means the server rejected the request with 429
	ErrRateLimited = errors.New("rate limited")
)

// StatusError is an unexpected HTTP status
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

// LoginResponse is the body of POST /api/login
type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SessionInfo is the body of GET /api/session
type SessionInfo struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	UserAgent     string     `json:"ua,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// Client is an API client holding one session
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *observability.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient uses h. A cookie jar is added when h has none.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the client logger
func WithLogger(logger *observability.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL: %q", baseURL)
	}

	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Login submits credentials. A rejected login is a LoginResponse with
// Success false, not an error.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	status, err := c.do(ctx, http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK, http.StatusUnauthorized:
		return &out, nil
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &StatusError{Code: status, Message: out.Message}
	}
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	if err != nil {
		return err
	}
	return checkStatus(status)
}

// Session reports the server's view of this client's session
func (c *Client) Session(ctx context.Context) (*SessionInfo, error) {
	var out SessionInfo
	status, err := c.do(ctx, http.MethodGet, "/api/session", nil, &out)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	return &out, nil
}

// Log records a security event for the session's identity, or anonymous
func (c *Client) Log(ctx context.Context, kind eventlog.Kind, details eventlog.Details) error {
	body := struct {
		Event   string           `json:"event"`
		Details eventlog.Details `json:"details,omitempty"`
	}{Event: string(kind), Details: details}

	status, err := c.do(ctx, http.MethodPost, "/api/log", body, nil)
	if err != nil {
		return err
	}
	return checkStatus(status)
}

// Logs fetches the session identity's events in append order
func (c *Client) Logs(ctx context.Context) ([]eventlog.Event, error) {
	var out struct {
		Logs []eventlog.Event `json:"logs"`
	}
	status, err := c.do(ctx, http.MethodGet, "/api/logs", nil, &out)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(status); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// Export downloads the session identity's events in format
func (c *Client) Export(ctx context.Context, format eventlog.ExportFormat) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/logs/export?format="+url.QueryEscape(string(format)), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return data, nil
}

// ClientConfig fetches the server's client tuning
func (c *Client) ClientConfig(ctx context.Context) (config.ClientTuning, error) {
	var out config.ClientTuning
	status, err := c.do(ctx, http.MethodGet, "/api/client-config", nil, &out)
	if err != nil {
		return out, err
	}
	return out, checkStatus(status)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	target := *c.base
	target.Path = c.base.Path + ref.Path
	target.RawQuery = ref.RawQuery

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends a JSON request and decodes a JSON response into out when present
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("API call")

	if out != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func checkStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &StatusError{Code: status}
	}
}
