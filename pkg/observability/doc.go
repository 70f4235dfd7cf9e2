// Package observability provides structured logging, Prometheus metrics, health
// checks, OpenTelemetry setup and graceful shutdown for the peekguard server.
//
// # Structured Logging
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("identity", "student").Info("Login succeeded")
//
// Request-scoped logging picks up request_id and identity from the context:
//
//	observability.FromContext(r.Context()).Warn("Event append failed")
//
// Passwords never reach a logger.
//
// # Prometheus Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.RecordEvent("blur")
//	metrics.RecordLogin("failure")
//	router.Use(observability.HTTPMetricsMiddleware(metrics))
//	observability.RegisterMetricsEndpoint(router, registry)
//
// # Health Checks
//
// The checker probes whichever event store dependency is configured (SQL DB,
// Redis, or neither for the memory and file backends):
//
//	checker := observability.NewHealthChecker(db, redisClient)
//	observability.RegisterHealthRoutes(router, checker)
//
// # OpenTelemetry
//
//	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
//		Enabled:     true,
//		Endpoint:    "otel-collector:4317",
//		ServiceName: "peekguard",
//	}, logger)
//	defer observability.ShutdownOTel(ctx, providers, logger)
//
// # Related Packages
//
//   - pkg/config: Observability configuration
//   - pkg/httputil: Request logging middleware
package observability
