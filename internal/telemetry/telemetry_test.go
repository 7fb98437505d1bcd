package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
)

func newTestRecorder(t *testing.T) (*Recorder, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return NewRecorderWith(tp, mp), spans, reader
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), "", "oscsim", "test", true)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestRecorderSuccess(t *testing.T) {
	rec, spans, reader := newTestRecorder(t)

	p := dynamo.DefaultParams()
	p.Steps = 50
	exp := experiment.New(experiment.Config{Params: p})
	require.NoError(t, exp.Setup(nil))

	ctx, finish := rec.Start(context.Background(), "run", p)
	result, err := exp.Run(ctx)
	finish(result, err)
	require.NoError(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "run", ended[0].Name())
	assert.Equal(t, codes.Unset, ended[0].Status().Code)

	assert.Equal(t, int64(1), counterValue(t, reader, "oscsim.runs"))
	assert.Equal(t, int64(50), counterValue(t, reader, "oscsim.steps"))
	assert.Equal(t, int64(0), counterValue(t, reader, "oscsim.failures"))
}

func TestRecorderFailure(t *testing.T) {
	rec, spans, reader := newTestRecorder(t)

	_, finish := rec.Start(context.Background(), "run", dynamo.DefaultParams())
	finish(nil, errors.New("boom"))

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)

	assert.Equal(t, int64(1), counterValue(t, reader, "oscsim.failures"))
	assert.Equal(t, int64(0), counterValue(t, reader, "oscsim.runs"))
}

func TestNewRecorderGlobalNoop(t *testing.T) {
	rec := NewRecorder()
	_, finish := rec.Start(context.Background(), "run", dynamo.DefaultParams())
	assert.NotPanics(t, func() { finish(nil, nil) })
}
