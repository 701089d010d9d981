package telemetry_test

import (
	"context"
	"testing"

	"github.com/qrcampaign/fulfillment/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "qr-fulfillment",
	}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.Equal(t, "qr-fulfillment", tp.GetConfig().ServiceName)
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_NilLogger(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{}, nil)
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderWithExporter(t *testing.T) {
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })

	tests := []struct {
		name      string
		ratio     float64
		wantSpans int
	}{
		{"always sample", 1.0, 1},
		{"never sample", 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := tracetest.NewInMemoryExporter()
			tp, err := telemetry.NewTracerProviderWithExporter(telemetry.Config{
				ServiceName:   "qr-fulfillment",
				SamplingRatio: tt.ratio,
			}, exporter, zaptest.NewLogger(t))
			require.NoError(t, err)
			assert.True(t, tp.IsEnabled())

			_, span := telemetry.StartSpan(context.Background(), "fulfillment.generate_bulk_archive")
			span.End()

			require.NoError(t, tp.ForceFlush(context.Background()))
			assert.Len(t, exporter.GetSpans(), tt.wantSpans)
			require.NoError(t, tp.Shutdown(context.Background()))
		})
	}
}
