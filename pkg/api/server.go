package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/peekguard/pkg/auth"
	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/httputil"
	"github.com/platinummonkey/peekguard/pkg/middleware"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

const defaultMaxBodyBytes = 64 << 10

// TuningSource yields the current client tuning
type TuningSource interface {
	Current() config.Tuning
}

// StaticTuning serves a fixed tuning
type StaticTuning config.Tuning

// Current implements TuningSource
func (t StaticTuning) Current() config.Tuning {
	return config.Tuning(t)
}

// Options configures optional server features. Zero values disable them.
type Options struct {
	Cookie auth.CookieConfig

	// LoginLimiter throttles POST /api/login per client IP
	LoginLimiter middleware.Limiter
	RetryAfter   time.Duration

	Tuning TuningSource

	Health   *observability.HealthChecker
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	Logger   *observability.Logger

	// StaticDir is served for every path no API route claims
	StaticDir    string
	MaxBodyBytes int64

	// Tracing wraps the handler in otelhttp server spans
	Tracing bool
}

// Server is the peekguard HTTP API
type Server struct {
	router   *mux.Router
	handler  http.Handler
	gate     *auth.Gate
	recorder *eventlog.Recorder
	opts     Options
}

// NewServer builds the API around gate and recorder
func NewServer(gate *auth.Gate, recorder *eventlog.Recorder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Tuning == nil {
		opts.Tuning = StaticTuning(config.DefaultTuning())
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.RetryAfter <= 0 {
		opts.RetryAfter = time.Minute
	}
	if opts.Cookie.TTL <= 0 {
		opts.Cookie.TTL = gate.Sessions().TTL()
	}

	s := &Server{
		router:   mux.NewRouter(),
		gate:     gate,
		recorder: recorder,
		opts:     opts,
	}
	s.setupRoutes()

	handler := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(opts.Logger),
		httputil.RecoveryMiddleware(opts.Logger),
		httputil.SecurityHeadersMiddleware,
		httputil.MaxBytesMiddleware(opts.MaxBodyBytes),
		middleware.SessionMiddleware(gate, opts.Cookie.Name),
	)(s.router)
	if opts.Tracing {
		handler = observability.InstrumentHandler(handler, "peekguard")
	}
	s.handler = handler
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	if s.opts.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(s.opts.Metrics))
	}

	authHandlers := NewAuthHandlers(s.gate, s.opts.Cookie)
	eventHandlers := eventlog.NewHandlers(s.recorder)

	// Session-only routes
	protected := s.router.NewRoute().Subrouter()
	protected.Use(middleware.RequireSession)
	protected.HandleFunc("/api/logout", authHandlers.logout).Methods(http.MethodPost)
	eventHandlers.RegisterRoutes(protected)

	login := http.Handler(http.HandlerFunc(authHandlers.login))
	if s.opts.LoginLimiter != nil {
		login = middleware.RateLimitMiddleware(s.opts.LoginLimiter, s.opts.RetryAfter, s.opts.Metrics)(login)
	}
	s.router.Handle("/api/login", login).Methods(http.MethodPost)
	s.router.HandleFunc("/api/session", authHandlers.session).Methods(http.MethodGet)
	s.router.HandleFunc("/api/client-config", s.clientConfig).Methods(http.MethodGet)
	eventHandlers.RegisterPublicRoutes(s.router)

	if s.opts.Health != nil {
		observability.RegisterHealthRoutes(s.router, s.opts.Health)
	}
	if s.opts.Registry != nil {
		observability.RegisterMetricsEndpoint(s.router, s.opts.Registry)
	}

	if s.opts.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.opts.StaticDir))).Methods(http.MethodGet, http.MethodHead)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router exposes the route table, for registering extra routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// clientConfig handles GET /api/client-config
func (s *Server) clientConfig(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.opts.Tuning.Current().Client())
}
