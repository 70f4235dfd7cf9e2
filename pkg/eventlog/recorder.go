package eventlog

import (
	"context"
	"time"

	"github.com/platinummonkey/peekguard/pkg/observability"
)

// Recorder appends events on behalf of request handlers and the auth gate.
// A failed append is logged and counted, never returned: a broken event log
// must not block a login or logout.
type Recorder struct {
	store   Store
	backend string
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRecorder wraps store. backend labels store metrics; metrics may be nil.
func NewRecorder(store Store, backend string, logger *observability.Logger, metrics *observability.Metrics) *Recorder {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Recorder{store: store, backend: backend, logger: logger, metrics: metrics}
}

// Record appends an event and reports whether it was stored
func (r *Recorder) Record(ctx context.Context, identity string, kind Kind, details Details) bool {
	start := time.Now()
	err := r.store.Append(ctx, identity, kind, details)
	r.metrics.RecordStoreOp("append", r.backend, start, err)

	if err != nil {
		r.logger.WithError(err).WithFields(map[string]interface{}{
			"identity": NormalizeIdentity(identity),
			"event":    string(kind),
		}).Error("Failed to record security event")
		return false
	}

	r.metrics.RecordEvent(string(kind))
	return true
}

// List reads identity's events through the wrapped store, timing the call
func (r *Recorder) List(ctx context.Context, identity string) ([]Event, error) {
	start := time.Now()
	events, err := r.store.List(ctx, identity)
	r.metrics.RecordStoreOp("list", r.backend, start, err)
	return events, err
}
