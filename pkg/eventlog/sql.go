package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// Dialect captures the differences between supported SQL backends
type Dialect struct {
	Name       string
	DriverName string
	schema     string
	insert     string
	list       string
}

// Postgres stores events in a BIGSERIAL-keyed table with JSONB details
var Postgres = Dialect{
	Name:       "postgres",
	DriverName: "postgres",
	schema: `
	CREATE TABLE IF NOT EXISTS security_events (
		id BIGSERIAL PRIMARY KEY,
		identity VARCHAR(255) NOT NULL,
		occurred_at BIGINT NOT NULL,
		kind VARCHAR(100) NOT NULL,
		details JSONB NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_security_events_identity ON security_events(identity, id);
	`,
	insert: `INSERT INTO security_events (identity, occurred_at, kind, details) VALUES ($1, $2, $3, $4)`,
	list:   `SELECT occurred_at, kind, details FROM security_events WHERE identity = $1 ORDER BY id ASC`,
}

// SQLite stores events in a rowid table with TEXT details
var SQLite = Dialect{
	Name:       "sqlite",
	DriverName: "sqlite3",
	schema: `
	CREATE TABLE IF NOT EXISTS security_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		identity TEXT NOT NULL,
		occurred_at INTEGER NOT NULL,
		kind TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_security_events_identity ON security_events(identity, id);
	`,
	insert: `INSERT INTO security_events (identity, occurred_at, kind, details) VALUES (?, ?, ?, ?)`,
	list:   `SELECT occurred_at, kind, details FROM security_events WHERE identity = ? ORDER BY id ASC`,
}

// SQLStore persists events in a SQL database. Timestamps are stored as Unix
// nanoseconds so both dialects round-trip them exactly.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	opts    options
}

// OpenSQL opens a database for dialect. SQLite is limited to one connection so
// an in-memory database is shared and writes serialize.
func OpenSQL(dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSQLStore wraps db and ensures the schema exists
func NewSQLStore(db *sql.DB, dialect Dialect, opts ...Option) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	s := &SQLStore{db: db, dialect: dialect, opts: buildOptions(opts)}
	if err := s.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure security_events table: %w", err)
	}
	return s, nil
}

func (s *SQLStore) ensureTable() error {
	_, err := s.db.Exec(strings.TrimSpace(s.dialect.schema))
	return err
}

// DB exposes the handle for health checks
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Append records an event for identity
func (s *SQLStore) Append(ctx context.Context, identity string, kind Kind, details Details) error {
	return appendVia(ctx, s, s.opts.clock, identity, kind, details)
}

// Write inserts a pre-stamped event
func (s *SQLStore) Write(ctx context.Context, event Event) error {
	if err := ValidateKind(event.Kind); err != nil {
		return err
	}
	event.Identity = NormalizeIdentity(event.Identity)

	detailsJSON, err := json.Marshal(normalizeDetails(event.Details))
	if err != nil {
		return fmt.Errorf("failed to marshal details: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.insert,
		event.Identity, event.Time.UnixNano(), string(event.Kind), string(detailsJSON),
	); err != nil {
		return fmt.Errorf("failed to insert security event: %w", err)
	}
	return nil
}

// List returns identity's events in insertion order
func (s *SQLStore) List(ctx context.Context, identity string) ([]Event, error) {
	identity = NormalizeIdentity(identity)

	rows, err := s.db.QueryContext(ctx, s.dialect.list, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			nanos       int64
			kind        string
			detailsJSON []byte
		)
		if err := rows.Scan(&nanos, &kind, &detailsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan security event: %w", err)
		}

		details := Details{}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal details: %w", err)
			}
		}

		events = append(events, Event{
			Identity: identity,
			Time:     time.Unix(0, nanos).UTC(),
			Kind:     Kind(kind),
			Details:  normalizeDetails(details),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate security events: %w", err)
	}
	return events, nil
}

// Close closes the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}
