package anomaly

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"

	"github.com/platinummonkey/peekguard/pkg/eventlog"
)

func TestHeartbeat_EmitsEachInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	emitter := &fakeEmitter{}
	hb := NewHeartbeat(clock, 0, emitter)

	hb.Start(context.Background())
	defer hb.Stop()
	assert.True(t, hb.Running())

	clock.Advance(DefaultHeartbeatInterval)
	assert.Eventually(t, func() bool { return len(emitter.snapshot()) == 1 }, time.Second, time.Millisecond)

	clock.Advance(DefaultHeartbeatInterval)
	assert.Eventually(t, func() bool { return len(emitter.snapshot()) == 2 }, time.Second, time.Millisecond)

	for _, e := range emitter.snapshot() {
		assert.Equal(t, eventlog.KindHeartbeat, e.kind)
		assert.Empty(t, e.details)
	}
}

func TestHeartbeat_Stop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	emitter := &fakeEmitter{}
	hb := NewHeartbeat(clock, time.Minute, emitter)

	hb.Start(context.Background())
	hb.Start(context.Background())
	hb.Stop()
	hb.Stop()
	assert.False(t, hb.Running())

	clock.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, emitter.snapshot())
}

func TestHeartbeat_StopsWithContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	hb := NewHeartbeat(clock, time.Minute, &fakeEmitter{})

	ctx, cancel := context.WithCancel(context.Background())
	hb.Start(ctx)
	cancel()
	hb.Stop()
	assert.False(t, hb.Running())
}

func TestHeartbeat_NilEmitter(t *testing.T) {
	clock := clockwork.NewFakeClock()
	hb := NewHeartbeat(clock, time.Second, nil)

	hb.Start(context.Background())
	clock.Advance(time.Second)
	clock.Advance(time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.True(t, hb.Running())
	hb.Stop()
	assert.False(t, hb.Running())
}
