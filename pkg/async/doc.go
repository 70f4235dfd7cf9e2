// Package async provides safe concurrent execution primitives for background tasks.
//
// # Overview
//
// This package handles goroutine lifecycle management with panic recovery, timeout
// enforcement and bounded concurrency for fire-and-forget work.
//
// # Key Functions
//
// Dispatcher: Fire-and-forget with a cap on in-flight tasks. Tasks over the cap
// are dropped, not queued.
//
//	d := async.NewDispatcher(8, 5*time.Second, logger)
//	_ = d.Go(ctx, "emit blur", func(ctx context.Context) error {
//		return client.Log(ctx, "blur", details)
//	})
//	defer d.Close(ctx)
//
// # Related Packages
//
//   - pkg/eventlog: MultiStore mirrors appends through a Dispatcher
//   - pkg/client: Emitter sends events through a Dispatcher
package async
