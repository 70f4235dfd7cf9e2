package eventlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists events as NDJSON, one record per line, and serves reads
// from an in-memory index rebuilt from the file on open.
type FileStore struct {
	path string
	opts options

	mu      sync.Mutex
	file    *os.File
	index   *MemoryStore
	skipped int
}

// OpenFileStore opens (creating if needed) the NDJSON log at path and replays it.
// Lines that fail to decode, such as a torn final write, are skipped and counted.
func OpenFileStore(path string, opts ...Option) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create event log directory: %w", err)
		}
	}

	s := &FileStore{
		path:  path,
		opts:  buildOptions(opts),
		index: NewMemoryStore(opts...),
	}

	if err := s.replay(); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log file: %w", err)
	}
	s.file = file

	return s, nil
}

func (s *FileStore) replay() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read event log file: %w", err)
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil || rec.Kind == "" {
			s.skipped++
			continue
		}
		if err := s.index.Write(context.Background(), rec.event()); err != nil {
			s.skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to scan event log file: %w", err)
	}
	return nil
}

// Skipped reports how many undecodable lines were ignored during replay
func (s *FileStore) Skipped() int {
	return s.skipped
}

// Append records an event for identity
func (s *FileStore) Append(ctx context.Context, identity string, kind Kind, details Details) error {
	return appendVia(ctx, s, s.opts.clock, identity, kind, details)
}

// Write appends a pre-stamped event to the file, then to the index
func (s *FileStore) Write(ctx context.Context, event Event) error {
	if err := ValidateKind(event.Kind); err != nil {
		return err
	}
	event.Identity = NormalizeIdentity(event.Identity)
	event.Details = normalizeDetails(event.Details)

	line, err := json.Marshal(toRecord(event))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return fmt.Errorf("event log file is closed")
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	return s.index.Write(ctx, event)
}

// List returns identity's events in append order
func (s *FileStore) List(ctx context.Context, identity string) ([]Event, error) {
	return s.index.List(ctx, identity)
}

// Close closes the underlying file
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}
