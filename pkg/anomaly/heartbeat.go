package anomaly

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

// DefaultHeartbeatInterval is how often a heartbeat event is sent
const DefaultHeartbeatInterval = 60 * time.Second

// Heartbeat emits a heartbeat event every interval
type Heartbeat struct {
	clock    clockwork.Clock
	interval time.Duration
	emitter  Emitter

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type discardEmitter struct{}

func (discardEmitter) Emit(eventlog.Kind, eventlog.Details) {}

// NewHeartbeat creates a stopped heartbeat. clock and emitter may be nil; a
// nil emitter drops every heartbeat.
func NewHeartbeat(clock clockwork.Clock, interval time.Duration, emitter Emitter) *Heartbeat {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if emitter == nil {
		emitter = discardEmitter{}
	}
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &Heartbeat{clock: clock, interval: interval, emitter: emitter}
}

// Start begins emitting until ctx is done or Stop is called. Starting a
// running heartbeat is a no-op.
func (h *Heartbeat) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.done = make(chan struct{})

	ticker := h.clock.NewTicker(h.interval)
	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				h.emitter.Emit(eventlog.KindHeartbeat, nil)
			}
		}
	}(h.done)
}

// Stop halts the heartbeat and waits for its goroutine to exit
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	cancel, done := h.cancel, h.done
	h.cancel, h.done = nil, nil
	h.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the heartbeat is started
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancel != nil
}
