package eventlog

import (
	"context"

	"github.com/jonboulle/clockwork"
)

// Store is an append-only, per-identity security event log. An empty identity
// is recorded as AnonymousIdentity. List returns events in append order and an
// empty slice for identities with no events.
type Store interface {
	Append(ctx context.Context, identity string, kind Kind, details Details) error
	List(ctx context.Context, identity string) ([]Event, error)
	Close() error
}

// EventWriter accepts events that already carry a timestamp. MultiStore uses it
// so mirrors keep the primary's timestamp.
type EventWriter interface {
	Write(ctx context.Context, event Event) error
}

// WritableStore is a Store that also accepts pre-stamped events
type WritableStore interface {
	Store
	EventWriter
}

// Option configures a backend
type Option func(*options)

type options struct {
	clock clockwork.Clock
}

// WithClock sets the clock used to stamp appended events
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// appendVia stamps and normalizes an event and hands it to w
func appendVia(ctx context.Context, w EventWriter, clock clockwork.Clock, identity string, kind Kind, details Details) error {
	if err := ValidateKind(kind); err != nil {
		return err
	}
	return w.Write(ctx, NewEvent(clock.Now(), identity, kind, details))
}
