package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/peekguard/pkg/api"
	"github.com/platinummonkey/peekguard/pkg/auth"
	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/keypad"
	"github.com/platinummonkey/peekguard/pkg/middleware"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatalf("peekguard: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Warn("OpenTelemetry disabled")
	}

	var registry *prometheus.Registry
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		registry = prometheus.NewRegistry()
		metrics = observability.NewMetrics(registry)
	}

	be, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	logger.WithField("backend", be.name).Info("Security event log ready")

	users := auth.NewUserStore(cfg.Auth.BcryptCost)
	if cfg.Auth.SeedUser != "" {
		if err := users.Add(cfg.Auth.SeedUser, cfg.Auth.SeedPassword); err != nil {
			return err
		}
		logger.WithField("username", cfg.Auth.SeedUser).Info("Seeded demo user")
		if !keypad.Typeable(cfg.Auth.SeedPassword) {
			logger.WithField("username", cfg.Auth.SeedUser).Warn("Seed password has characters the keypad cannot enter")
		}
	}
	sessions := auth.NewSessionStore(cfg.Session.Capacity, cfg.Session.TTL, nil)
	recorder := eventlog.NewRecorder(be.store, be.name, logger, metrics)
	gate := auth.NewGate(users, sessions, recorder, logger, metrics)

	jobs := cron.New()

	limitConfig := middleware.LoginRateLimitConfig(cfg.Auth.LoginRatePerMinute, cfg.Auth.LoginBurst)
	var limiter middleware.Limiter
	if be.redis != nil {
		limiter = middleware.NewDistributedRateLimiter(be.redis, limitConfig, "")
	} else {
		local := middleware.NewRateLimiter(limitConfig, nil)
		limiter = local
		if _, err := jobs.AddFunc("@every 5m", func() {
			defer observability.RecoverPanic(logger, "rate limit cleanup")
			if n := local.Cleanup(); n > 0 {
				logger.WithField("removed", n).Debug("Pruned idle rate limit buckets")
			}
		}); err != nil {
			return err
		}
	}
	if _, err := jobs.AddFunc("@every 30s", func() {
		defer observability.RecoverPanic(logger, "session gauge")
		metrics.SetActiveSessions(sessions.Count())
	}); err != nil {
		return err
	}

	var tuning api.TuningSource = api.StaticTuning(cfg.Tuning)
	var watcher *config.TuningWatcher
	if cfg.TuningFile != "" {
		watcher, err = config.NewTuningWatcher(cfg.TuningFile, config.TuningFromEnv(), logger)
		if err != nil {
			return err
		}
		tuning = watcher
	}

	server := api.NewServer(gate, recorder, api.Options{
		Cookie: auth.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		},
		LoginLimiter: limiter,
		RetryAfter:   limitConfig.WindowDuration,
		Tuning:       tuning,
		Health:       observability.NewHealthChecker(be.db, be.redis).WithVersion(version),
		Registry:     registry,
		Metrics:      metrics,
		Logger:       logger,
		StaticDir:    cfg.Server.StaticDir,
		Tracing:      providers != nil,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.Register("cron", func(ctx context.Context) error {
		select {
		case <-jobs.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	shutdown.Register("event store", func(context.Context) error {
		return be.store.Close()
	})
	shutdown.Register("otel", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	if watcher != nil {
		shutdown.Register("tuning watcher", func(context.Context) error {
			return watcher.Close()
		})
	}

	jobs.Start()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Info("Starting peekguard server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	g.Go(func() error {
		return shutdown.WaitForSignal(gctx)
	})

	err = g.Wait()
	logger.Info("Server stopped")
	return err
}
