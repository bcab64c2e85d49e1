package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracingDisabledIsNoop(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewExporterRejectsBadConfig(t *testing.T) {
	_, err := newExporter(context.Background(), TracingConfig{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "unknown tracing exporter")

	_, err = newExporter(context.Background(), TracingConfig{Exporter: "otlp"})
	assert.ErrorContains(t, err, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func TestSamplerBounds(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestRepositorySpanRecordsError(t *testing.T) {
	_, span := StartRepositorySpan(context.Background(), "React", "reactions")
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })
}
