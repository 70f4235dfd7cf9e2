package async

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/platinummonkey/peekguard/pkg/observability"
)

// ErrSaturated is returned by Dispatcher.Go when every slot is busy
var ErrSaturated = errors.New("dispatcher saturated")

// ErrClosed is returned by Dispatcher.Go after Close
var ErrClosed = errors.New("dispatcher closed")

// run executes fn with panic recovery, a timeout and error logging. The task
// context is detached from parentCtx cancellation (values are kept), so work
// started from an HTTP handler outlives the request.
func run(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parentCtx), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil && logger != nil {
			logger.WithFields(map[string]interface{}{
				"task":  taskName,
				"panic": fmt.Sprint(r),
				"stack": string(debug.Stack()),
			}).Error("PANIC in background task")
		}
	}()

	if err := fn(ctx); err != nil && logger != nil {
		logger.WithError(err).WithField("task", taskName).Warn("Background task failed")
	}
}

// Dispatcher runs fire-and-forget tasks with a bound on how many may be in
// flight. When the bound is reached new tasks are dropped, never queued, so a
// slow backend cannot make callers block.
type Dispatcher struct {
	sem     *semaphore.Weighted
	size    int64
	logger  *observability.Logger
	timeout time.Duration

	closeOnce sync.Once
	closed    chan struct{}
}

// NewDispatcher creates a dispatcher allowing maxInFlight concurrent tasks
func NewDispatcher(maxInFlight int, timeout time.Duration, logger *observability.Logger) *Dispatcher {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Dispatcher{
		sem:     semaphore.NewWeighted(int64(maxInFlight)),
		size:    int64(maxInFlight),
		logger:  logger,
		timeout: timeout,
		closed:  make(chan struct{}),
	}
}

// Go starts fn if a slot is free. It never blocks.
func (d *Dispatcher) Go(ctx context.Context, taskName string, fn func(context.Context) error) error {
	select {
	case <-d.closed:
		return ErrClosed
	default:
	}

	if !d.sem.TryAcquire(1) {
		if d.logger != nil {
			d.logger.WithField("task", taskName).Debug("Dropping task, dispatcher saturated")
		}
		return ErrSaturated
	}

	go func() {
		defer d.sem.Release(1)
		run(ctx, d.logger, d.timeout, taskName, fn)
	}()
	return nil
}

// Wait blocks until every in-flight task finishes or ctx is done
func (d *Dispatcher) Wait(ctx context.Context) error {
	if err := d.sem.Acquire(ctx, d.size); err != nil {
		return fmt.Errorf("waiting for in-flight tasks: %w", err)
	}
	d.sem.Release(d.size)
	return nil
}

// Close rejects new tasks and waits for in-flight ones
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() { close(d.closed) })
	return d.Wait(ctx)
}
