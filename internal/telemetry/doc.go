// Package telemetry provides OpenTelemetry initialization and helpers
// for the resume ingestor service.
//
// The package configures OTLP HTTP export for traces, logs and metrics
// against a single collector endpoint.
package telemetry
