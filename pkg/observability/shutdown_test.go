package observability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager_RunsRegisteredFuncsOnce(t *testing.T) {
	sm := NewShutdownManager(NopLogger(), nil, time.Second)

	var calls int32
	sm.Register("store", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	sm.Register("cron", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	require.NoError(t, sm.Shutdown())
	require.NoError(t, sm.Shutdown())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestShutdownManager_CollectsErrors(t *testing.T) {
	sm := NewShutdownManager(NopLogger(), nil, time.Second)
	boom := errors.New("boom")
	sm.Register("store", func(ctx context.Context) error { return boom })

	err := sm.Shutdown()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "store")
}

func TestShutdownManager_WaitForSignalHonorsContext(t *testing.T) {
	sm := NewShutdownManager(NopLogger(), nil, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, sm.WaitForSignal(ctx))
}

func TestRecoverPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverPanic(NopLogger(), "test")
		panic("kaboom")
	})
	assert.NotPanics(t, func() {
		defer RecoverPanic(nil, "no logger")
		panic("again")
	})
}
