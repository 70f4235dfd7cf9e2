package client

import (
	"context"
	"time"

	"github.com/platinummonkey/peekguard/pkg/async"
	"github.com/platinummonkey/peekguard/pkg/eventlog"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// Emitter sends events in the background with a bound on in-flight requests.
// When the bound is reached events are dropped.
type Emitter struct {
	client     *Client
	dispatcher *async.Dispatcher
	logger     *observability.Logger
}

// NewEmitter creates an emitter for c. logger may be nil.
func NewEmitter(c *Client, maxInFlight int, logger *observability.Logger) *Emitter {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Emitter{
		client:     c,
		dispatcher: async.NewDispatcher(maxInFlight, 5*time.Second, logger),
		logger:     logger,
	}
}

// Emit sends an event without waiting for the result
func (e *Emitter) Emit(kind eventlog.Kind, details eventlog.Details) {
	err := e.dispatcher.Go(context.Background(), "emit "+string(kind), func(ctx context.Context) error {
		if err := e.client.Log(ctx, kind, details); err != nil {
			e.logger.WithError(err).WithField("event", string(kind)).Debug("Dropped security event")
		}
		return nil
	})
	if err != nil {
		e.logger.WithError(err).WithField("event", string(kind)).Debug("Dropped security event")
	}
}

// Flush waits for in-flight events
func (e *Emitter) Flush(ctx context.Context) error {
	return e.dispatcher.Wait(ctx)
}

// Close stops accepting events and waits for in-flight ones
func (e *Emitter) Close(ctx context.Context) error {
	return e.dispatcher.Close(ctx)
}
