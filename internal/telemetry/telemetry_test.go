package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitTelemetry_NoEndpoint(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), Options{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("expected no-op shutdown, got %v", err)
	}
}

func TestInitTelemetry_WithEndpoint(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), Options{
		ServiceName:    "test-service",
		ServiceVersion: "v1.0.0",
		Env:            "test",
		Endpoint:       "http://127.0.0.1:4318",
		Headers:        map[string]string{"x-test": "1"},
	})
	if err != nil {
		t.Fatalf("InitTelemetry failed: %v", err)
	}

	// Nothing is listening, so only check that shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		host     string
		traces   string
		insecure bool
	}{
		{"http://localhost:4318", "localhost:4318", "/v1/traces", true},
		{"https://otlp.example.com/otlp", "otlp.example.com", "/otlp/v1/traces", false},
		{"https://otlp.example.com/otlp/v1/traces", "otlp.example.com", "/otlp/v1/traces", false},
		{"collector:4318", "collector:4318", "/v1/traces", false},
	}

	for _, tt := range tests {
		ep := parseEndpoint(tt.raw)
		if ep.host != tt.host {
			t.Errorf("parseEndpoint(%q).host = %q, want %q", tt.raw, ep.host, tt.host)
		}
		if got := ep.path("traces"); got != tt.traces {
			t.Errorf("parseEndpoint(%q) traces path = %q, want %q", tt.raw, got, tt.traces)
		}
		if ep.insecure != tt.insecure {
			t.Errorf("parseEndpoint(%q).insecure = %v, want %v", tt.raw, ep.insecure, tt.insecure)
		}
	}
}

func TestTracer(t *testing.T) {
	if Tracer("test-tracer") == nil {
		t.Fatal("Tracer returned nil")
	}
}

func TestMeter(t *testing.T) {
	if Meter("test-meter") == nil {
		t.Fatal("Meter returned nil")
	}
}
