package eventlog

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/peekguard/pkg/async"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// MultiStore writes to a primary store synchronously and copies every event to
// mirror stores in the background. Reads are served by the primary only; a
// failing or saturated mirror never fails an append.
type MultiStore struct {
	primary    WritableStore
	mirrors    []WritableStore
	dispatcher *async.Dispatcher
	logger     *observability.Logger
	opts       options
}

// NewMultiStore creates a fan-out store. concurrency bounds in-flight mirror writes.
func NewMultiStore(primary WritableStore, mirrors []WritableStore, concurrency int, logger *observability.Logger, opts ...Option) *MultiStore {
	return &MultiStore{
		primary:    primary,
		mirrors:    mirrors,
		dispatcher: async.NewDispatcher(concurrency, 5*time.Second, logger),
		logger:     logger,
		opts:       buildOptions(opts),
	}
}

// Append records an event for identity
func (m *MultiStore) Append(ctx context.Context, identity string, kind Kind, details Details) error {
	return appendVia(ctx, m, m.opts.clock, identity, kind, details)
}

// Write records event in the primary, then schedules it for every mirror
func (m *MultiStore) Write(ctx context.Context, event Event) error {
	event.Details = normalizeDetails(event.Details)
	if err := m.primary.Write(ctx, event); err != nil {
		return err
	}

	for _, mirror := range m.mirrors {
		mirror := mirror
		if err := m.dispatcher.Go(ctx, "mirror security event", func(ctx context.Context) error {
			return mirror.Write(ctx, event)
		}); err != nil && m.logger != nil {
			m.logger.WithError(err).WithField("event", string(event.Kind)).Warn("Mirror write skipped")
		}
	}
	return nil
}

// List reads from the primary
func (m *MultiStore) List(ctx context.Context, identity string) ([]Event, error) {
	return m.primary.List(ctx, identity)
}

// Flush waits for in-flight mirror writes
func (m *MultiStore) Flush(ctx context.Context) error {
	return m.dispatcher.Wait(ctx)
}

// Close drains mirror writes and closes every store
func (m *MultiStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errs := []error{m.dispatcher.Close(ctx)}
	for _, mirror := range m.mirrors {
		errs = append(errs, mirror.Close())
	}
	errs = append(errs, m.primary.Close())
	return errors.Join(errs...)
}
