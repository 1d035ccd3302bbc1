package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("resume-ingestor/business")

	// Resume metrics
	ResumeLookupsTotal   metric.Int64Counter
	ResumeLookupDuration metric.Float64Histogram
	ResumeWritesTotal    metric.Int64Counter
)

func Init() error {
	var err error

	ResumeLookupsTotal, err = meter.Int64Counter(
		"resume.lookups.total",
		metric.WithDescription("Total number of resume lookups"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ResumeLookupDuration, err = meter.Float64Histogram(
		"resume.lookup.duration",
		metric.WithDescription("Duration of resume lookups, cache included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5),
	)
	if err != nil {
		return err
	}

	ResumeWritesTotal, err = meter.Int64Counter(
		"resume.writes.total",
		metric.WithDescription("Total number of resume upserts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordResumeLookup is a no-op until Init has run.
func RecordResumeLookup(ctx context.Context, status string, elapsed time.Duration) {
	if ResumeLookupsTotal == nil || ResumeLookupDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	ResumeLookupsTotal.Add(ctx, 1, attrs)
	ResumeLookupDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordResumeWrite is a no-op until Init has run.
func RecordResumeWrite(ctx context.Context, status string) {
	if ResumeWritesTotal == nil {
		return
	}
	ResumeWritesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
