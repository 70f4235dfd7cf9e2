// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from PEEKGUARD_* environment
// variables with defaults suitable for a local demo.
//
// # Configuration Structure
//
// Server settings:
//
//	PEEKGUARD_HOST="0.0.0.0"
//	PEEKGUARD_PORT="3000"
//	PEEKGUARD_STATIC_DIR="./public"
//
// Session settings:
//
//	PEEKGUARD_SESSION_TTL="1h"
//	PEEKGUARD_SESSION_COOKIE="peekguard_session"
//
// Event log storage:
//
//	PEEKGUARD_STORAGE_BACKEND="sqlite"  # memory, file, sqlite, postgres, redis
//	PEEKGUARD_EVENTS_FILE="peekguard-events.ndjson"
//	PEEKGUARD_SQLITE_PATH="peekguard.db"
//	PEEKGUARD_POSTGRES_URL="postgres://localhost/peekguard?sslmode=disable"
//	PEEKGUARD_REDIS_ADDR="localhost:6379"
//	PEEKGUARD_MIRROR_FILE="/var/log/peekguard/events.ndjson"
//
// Auth:
//
//	PEEKGUARD_SEED_USER="student"
//	PEEKGUARD_SEED_PASSWORD="p@ssw0rd123"
//	PEEKGUARD_LOGIN_RATE_PER_MINUTE="10"
//
// Client tuning (also settable from a YAML file, hot-reloaded):
//
//	PEEKGUARD_TUNING_FILE="tuning.yaml"
//	PEEKGUARD_REVEAL_WINDOW="700ms"
//	PEEKGUARD_BLUR_COOLDOWN="2s"
//	PEEKGUARD_FAST_MOUSE_THRESHOLD="1.5"
//
// Observability settings:
//
//	PEEKGUARD_LOG_LEVEL="info"  # debug, info, warn, error
//	PEEKGUARD_METRICS_ENABLED="true"
//	PEEKGUARD_OTEL_ENABLED="true"
//	PEEKGUARD_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if cfg.TuningFile != "" {
//		tw, err := config.NewTuningWatcher(cfg.TuningFile, cfg.Tuning, logger)
//		...
//		go tw.Run(ctx)
//	}
//
// # Related Packages
//
//   - pkg/eventlog: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
