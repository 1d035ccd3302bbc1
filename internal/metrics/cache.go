package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CacheMetrics records cache events as OpenTelemetry instruments.
// A nil *CacheMetrics drops everything.
type CacheMetrics struct {
	meter         metric.Meter
	attrs         []attribute.KeyValue
	lookups       metric.Int64Counter
	evictions     metric.Int64Counter
	expirations   metric.Int64Counter
	sweepDuration metric.Float64Histogram
}

// NewCacheMetrics creates instruments on the global meter provider.
func NewCacheMetrics(cacheName string) (*CacheMetrics, error) {
	return NewCacheMetricsWithMeter(otel.Meter("resume-ingestor/cache"), cacheName)
}

// NewCacheMetricsWithMeter creates instruments on m, labelled with cacheName.
func NewCacheMetricsWithMeter(m metric.Meter, cacheName string) (*CacheMetrics, error) {
	lookups, err := m.Int64Counter(
		"cache.lookups.total",
		metric.WithDescription("Total number of cache lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	evictions, err := m.Int64Counter(
		"cache.evictions.total",
		metric.WithDescription("Entries evicted because the cache was full"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	expirations, err := m.Int64Counter(
		"cache.expirations.total",
		metric.WithDescription("Expired entries removed on read or by the sweeper"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	sweepDuration, err := m.Float64Histogram(
		"cache.sweep.duration",
		metric.WithDescription("Duration of background cleanup sweeps"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		meter:         m,
		attrs:         []attribute.KeyValue{attribute.String("cache", cacheName)},
		lookups:       lookups,
		evictions:     evictions,
		expirations:   expirations,
		sweepDuration: sweepDuration,
	}, nil
}

// ObserveSize registers a gauge reporting size() on every collection.
func (m *CacheMetrics) ObserveSize(size func() int) error {
	if m == nil {
		return nil
	}
	_, err := m.meter.Int64ObservableGauge(
		"cache.entries",
		metric.WithDescription("Number of entries currently held"),
		metric.WithUnit("1"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(size()), metric.WithAttributes(m.attrs...))
			return nil
		}),
	)
	return err
}

func (m *CacheMetrics) RecordLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.Add(context.Background(), 1, m.with(attribute.String("result", result)))
}

func (m *CacheMetrics) RecordEviction(count int) {
	if m == nil {
		return
	}
	m.evictions.Add(context.Background(), int64(count), m.with())
}

func (m *CacheMetrics) RecordExpiration(count int, reason string) {
	if m == nil {
		return
	}
	m.expirations.Add(context.Background(), int64(count), m.with(attribute.String("reason", reason)))
}

func (m *CacheMetrics) RecordSweep(_ int, duration time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Record(context.Background(), duration.Seconds(), m.with())
}

func (m *CacheMetrics) with(extra ...attribute.KeyValue) metric.MeasurementOption {
	attrs := make([]attribute.KeyValue, 0, len(m.attrs)+len(extra))
	attrs = append(attrs, m.attrs...)
	attrs = append(attrs, extra...)
	return metric.WithAttributes(attrs...)
}
