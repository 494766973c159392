package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/signalsfoundry/cellular-simulator/internal/logging"
)

func TestTracingConfigFromEnv(t *testing.T) {
	t.Setenv("CELLSIM_TRACING_ENABLED", "true")
	t.Setenv("CELLSIM_TRACING_EXPORTER", "OTLP")
	t.Setenv("CELLSIM_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("CELLSIM_TRACING_SAMPLE_RATIO", "0.25")

	cfg := TracingConfigFromEnv(DefaultTracingConfig())
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.Endpoint != "collector:4317" || cfg.SampleRatio != 0.25 {
		t.Fatalf("TracingConfigFromEnv = %+v", cfg)
	}
	if cfg.ServiceName != "cellsim" {
		t.Fatalf("ServiceName = %q, want default cellsim", cfg.ServiceName)
	}
}

func TestTracingConfigFromEnvIgnoresBadRatio(t *testing.T) {
	t.Setenv("CELLSIM_TRACING_SAMPLE_RATIO", "7")
	if cfg := TracingConfigFromEnv(DefaultTracingConfig()); cfg.SampleRatio != 1.0 {
		t.Fatalf("SampleRatio = %v, want 1.0", cfg.SampleRatio)
	}
}

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), DefaultTracingConfig(), logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Fatalf("expected a non-recording span when tracing is disabled")
	}
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestInitTracingStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Writer = &buf

	shutdown, err := InitTracing(context.Background(), cfg, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	_, span := Tracer().Start(context.Background(), "simulate 4G")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown, logging.Noop())

	if !strings.Contains(buf.String(), "simulate 4G") {
		t.Fatalf("stdout exporter output missing span: %q", buf.String())
	}

	// Leave the global provider in its disabled state for other tests.
	if _, err := InitTracing(context.Background(), DefaultTracingConfig(), logging.Noop()); err != nil {
		t.Fatalf("reset tracing: %v", err)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"
	if _, err := InitTracing(context.Background(), cfg, logging.Noop()); err == nil {
		t.Fatalf("expected unsupported exporter error")
	}
}
