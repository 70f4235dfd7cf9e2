package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/peekguard/pkg/config"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// backend is the opened event store plus the handles health checks need
type backend struct {
	store eventlog.Store
	name  string
	db    *sql.DB
	redis *redis.Client
}

func openBackend(ctx context.Context, cfg config.StorageConfig, logger *observability.Logger) (*backend, error) {
	b := &backend{name: cfg.Backend}

	var primary eventlog.WritableStore
	switch cfg.Backend {
	case config.BackendMemory:
		primary = eventlog.NewMemoryStore()

	case config.BackendFile:
		fs, err := eventlog.OpenFileStore(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		if n := fs.Skipped(); n > 0 {
			logger.WithField("skipped", n).Warn("Skipped unreadable lines in event file")
		}
		primary = fs

	case config.BackendSQLite, config.BackendPostgres:
		dialect, dsn := eventlog.SQLite, cfg.SQLitePath
		if cfg.Backend == config.BackendPostgres {
			dialect, dsn = eventlog.Postgres, cfg.PostgresURL
		}
		db, err := eventlog.OpenSQL(dialect, dsn)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reach %s database: %w", dialect.Name, err)
		}
		store, err := eventlog.NewSQLStore(db, dialect)
		if err != nil {
			db.Close()
			return nil, err
		}
		b.db = store.DB()
		primary = store

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		store := eventlog.NewRedisStore(client, cfg.RedisKeyPrefix)
		b.redis = store.Client()
		primary = store

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}

	if cfg.MirrorFilePath == "" {
		b.store = primary
		return b, nil
	}

	mirror, err := eventlog.OpenFileStore(cfg.MirrorFilePath)
	if err != nil {
		primary.Close()
		return nil, fmt.Errorf("failed to open mirror: %w", err)
	}
	logger.WithField("path", cfg.MirrorFilePath).Info("Mirroring security events to file")
	b.store = eventlog.NewMultiStore(primary, []eventlog.WritableStore{mirror}, cfg.MirrorConcurrency, logger)
	return b, nil
}
