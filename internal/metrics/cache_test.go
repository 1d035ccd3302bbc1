package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/resumeingestor/ingestor/internal/cache"
)

var _ cache.Recorder = (*CacheMetrics)(nil)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumBy(t *testing.T, m metricdata.Metrics, key, value string) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)

	var total int64
	for _, dp := range sum.DataPoints {
		if key == "" {
			total += dp.Value
			continue
		}
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestCacheMetrics_RecordsEvents(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewCacheMetricsWithMeter(provider.Meter("test"), "resumes")
	require.NoError(t, err)

	m.RecordLookup(true)
	m.RecordLookup(true)
	m.RecordLookup(false)
	m.RecordEviction(3)
	m.RecordExpiration(2, cache.ExpiredSweep)
	m.RecordExpiration(1, cache.ExpiredLazy)
	m.RecordSweep(2, 3*time.Millisecond)
	require.NoError(t, m.ObserveSize(func() int { return 7 }))

	got := collect(t, reader)

	assert.Equal(t, int64(2), sumBy(t, got["cache.lookups.total"], "result", "hit"))
	assert.Equal(t, int64(1), sumBy(t, got["cache.lookups.total"], "result", "miss"))
	assert.Equal(t, int64(3), sumBy(t, got["cache.evictions.total"], "cache", "resumes"))
	assert.Equal(t, int64(2), sumBy(t, got["cache.expirations.total"], "reason", "sweep"))
	assert.Equal(t, int64(1), sumBy(t, got["cache.expirations.total"], "reason", "lazy"))

	hist, ok := got["cache.sweep.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)

	gauge, ok := got["cache.entries"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(7), gauge.DataPoints[0].Value)
}

func TestCacheMetrics_WiredIntoCache(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewCacheMetricsWithMeter(provider.Meter("test"), "resumes")
	require.NoError(t, err)

	c, err := cache.New[string](cache.Config{
		DefaultTTL:      time.Minute,
		MaxSize:         10,
		CleanupInterval: time.Minute,
	}, cache.WithRecorder(m))
	require.NoError(t, err)

	c.Set("a", "x")
	c.Get("a")
	c.Get("b")

	got := collect(t, reader)
	assert.Equal(t, int64(1), sumBy(t, got["cache.lookups.total"], "result", "hit"))
	assert.Equal(t, int64(1), sumBy(t, got["cache.lookups.total"], "result", "miss"))
}

func TestCacheMetrics_NilIsNoop(t *testing.T) {
	var m *CacheMetrics

	assert.NotPanics(t, func() {
		m.RecordLookup(true)
		m.RecordEviction(1)
		m.RecordExpiration(1, cache.ExpiredLazy)
		m.RecordSweep(1, time.Millisecond)
		assert.NoError(t, m.ObserveSize(func() int { return 0 }))
	})
}
