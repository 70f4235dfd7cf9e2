package eventlog

import (
	"context"
	"sync"
)

// MemoryStore keeps every identity's events in process memory. The map lock
// only guards sequence lookup; appends lock the identity's own sequence.
type MemoryStore struct {
	opts options

	mu   sync.RWMutex
	seqs map[string]*sequence
}

type sequence struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts: buildOptions(opts),
		seqs: make(map[string]*sequence),
	}
}

// Append records an event for identity
func (s *MemoryStore) Append(ctx context.Context, identity string, kind Kind, details Details) error {
	return appendVia(ctx, s, s.opts.clock, identity, kind, details)
}

// Write records a pre-stamped event
func (s *MemoryStore) Write(ctx context.Context, event Event) error {
	if err := ValidateKind(event.Kind); err != nil {
		return err
	}
	event.Identity = NormalizeIdentity(event.Identity)
	event.Details = normalizeDetails(event.Details)

	seq := s.sequenceFor(event.Identity)
	seq.mu.Lock()
	seq.events = append(seq.events, event)
	seq.mu.Unlock()
	return nil
}

// List returns a copy of identity's events in append order. Callers own the
// returned details maps.
func (s *MemoryStore) List(ctx context.Context, identity string) ([]Event, error) {
	s.mu.RLock()
	seq, ok := s.seqs[NormalizeIdentity(identity)]
	s.mu.RUnlock()
	if !ok {
		return []Event{}, nil
	}

	seq.mu.Lock()
	defer seq.mu.Unlock()
	out := make([]Event, len(seq.events))
	for i, e := range seq.events {
		e.Details = normalizeDetails(e.Details)
		out[i] = e
	}
	return out, nil
}

// Identities returns every identity with at least one event
func (s *MemoryStore) Identities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.seqs))
	for id := range s.seqs {
		ids = append(ids, id)
	}
	return ids
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) sequenceFor(identity string) *sequence {
	s.mu.RLock()
	seq, ok := s.seqs[identity]
	s.mu.RUnlock()
	if ok {
		return seq
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq, ok = s.seqs[identity]; !ok {
		seq = &sequence{}
		s.seqs[identity] = seq
	}
	return seq
}
