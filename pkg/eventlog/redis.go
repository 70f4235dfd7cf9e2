package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps one Redis list per identity. RPUSH is atomic, so concurrent
// appends from several server processes never lose writes.
type RedisStore struct {
	client *redis.Client
	prefix string
	opts   options
}

// NewRedisStore creates a store whose keys are prefix+identity
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = "peekguard:events:"
	}
	return &RedisStore{client: client, prefix: prefix, opts: buildOptions(opts)}
}

func (s *RedisStore) key(identity string) string {
	return s.prefix + NormalizeIdentity(identity)
}

// Client exposes the Redis client for health checks and rate limiting
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Append records an event for identity
func (s *RedisStore) Append(ctx context.Context, identity string, kind Kind, details Details) error {
	return appendVia(ctx, s, s.opts.clock, identity, kind, details)
}

// Write pushes a pre-stamped event onto the identity's list
func (s *RedisStore) Write(ctx context.Context, event Event) error {
	if err := ValidateKind(event.Kind); err != nil {
		return err
	}
	event.Identity = NormalizeIdentity(event.Identity)
	event.Details = normalizeDetails(event.Details)

	payload, err := json.Marshal(toRecord(event))
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := s.client.RPush(ctx, s.key(event.Identity), payload).Err(); err != nil {
		return fmt.Errorf("failed to push security event: %w", err)
	}
	return nil
}

// List returns identity's events in push order
func (s *RedisStore) List(ctx context.Context, identity string) ([]Event, error) {
	raw, err := s.client.LRange(ctx, s.key(identity), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read security events: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for _, item := range raw {
		var rec record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode security event: %w", err)
		}
		events = append(events, rec.event())
	}
	return events, nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
