package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/peekguard/pkg/observability"
)

func TestRecorder_Record(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	store := NewMemoryStore()
	rec := NewRecorder(store, "memory", observability.NopLogger(), metrics)

	assert.True(t, rec.Record(context.Background(), "student", KindBlur, Details{"reason": "window_blur"}))

	events, err := rec.List(context.Background(), "student")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SecurityEventsTotal.WithLabelValues("blur")))
}

func TestRecorder_SwallowsStoreErrors(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	rec := NewRecorder(&failingStore{err: errors.New("unavailable")}, "redis", nil, metrics)

	assert.NotPanics(t, func() {
		assert.False(t, rec.Record(context.Background(), "student", KindLoginSuccess, nil))
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreErrorsTotal.WithLabelValues("append", "redis")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.SecurityEventsTotal.WithLabelValues("login_success")))
}

func TestRecorder_NilMetrics(t *testing.T) {
	rec := NewRecorder(NewMemoryStore(), "memory", nil, nil)
	assert.True(t, rec.Record(context.Background(), "", KindHeartbeat, nil))
}
