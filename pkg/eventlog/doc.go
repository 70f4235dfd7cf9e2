// Package eventlog is the append-only, per-identity security event log.
//
// # Overview
//
// Every login, logout, anomaly-triggered blur and client heartbeat is appended
// under the identity it belongs to ("anonymous" when there is no session).
// Entries are never edited or deleted and are listed in append order.
//
// # Backends
//
//	store := eventlog.NewMemoryStore()
//	store, err := eventlog.OpenFileStore("events.ndjson")
//	db, _ := eventlog.OpenSQL(eventlog.SQLite, "peekguard.db")
//	store, err := eventlog.NewSQLStore(db, eventlog.SQLite)
//	store := eventlog.NewRedisStore(redisClient, "peekguard:events:")
//
// MultiStore fans appends out to mirrors in the background:
//
//	store := eventlog.NewMultiStore(primary, []eventlog.WritableStore{fileMirror}, 8, logger)
//
// # Recording
//
// Recorder never fails its caller; errors are logged and counted:
//
//	rec := eventlog.NewRecorder(store, "sqlite", logger, metrics)
//	rec.Record(ctx, "student", eventlog.KindLoginSuccess, eventlog.Details{"ip": ip, "ua": ua})
//
// # HTTP
//
//	h := eventlog.NewHandlers(rec)
//	h.RegisterPublicRoutes(router)   // POST /api/log
//	h.RegisterRoutes(authedRouter)   // GET /api/logs, GET /api/logs/export
//
// # Related Packages
//
//   - pkg/auth: Records login and logout events
//   - pkg/middleware: Supplies the session identity
package eventlog
