package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const scope = "oscsim/simulation"

// Recorder wraps simulation runs in a span and counts runs, steps and
// failures.
type Recorder struct {
	tracer   trace.Tracer
	runs     metric.Int64Counter
	steps    metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

// NewRecorder uses the global providers installed by Init.
func NewRecorder() *Recorder {
	return NewRecorderWith(otel.GetTracerProvider(), otel.GetMeterProvider())
}

func NewRecorderWith(tp trace.TracerProvider, mp metric.MeterProvider) *Recorder {
	meter := mp.Meter(scope)
	r := &Recorder{tracer: tp.Tracer(scope)}

	// Instrument errors only happen on invalid names; the nil instruments
	// are skipped in Finish.
	r.runs, _ = meter.Int64Counter("oscsim.runs",
		metric.WithDescription("Completed simulation runs"))
	r.steps, _ = meter.Int64Counter("oscsim.steps",
		metric.WithDescription("Integration steps taken"))
	r.failures, _ = meter.Int64Counter("oscsim.failures",
		metric.WithDescription("Runs that returned an error"))
	r.duration, _ = meter.Float64Histogram("oscsim.run.duration",
		metric.WithDescription("Wall time per run"),
		metric.WithUnit("ms"))
	return r
}

// Start opens a span for one run. The returned function ends it and must be
// called exactly once with the run outcome.
func (r *Recorder) Start(ctx context.Context, name string, p dynamo.Params) (context.Context, func(*dynamo.Result, error)) {
	attrs := []attribute.KeyValue{
		attribute.Float64("oscsim.mass", p.Mass),
		attribute.Float64("oscsim.stiffness", p.Stiffness),
		attribute.Float64("oscsim.damping", p.Damping),
		attribute.Int("oscsim.steps", p.Steps),
		attribute.Float64("oscsim.dt", p.Dt),
	}

	ctx, span := r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	start := time.Now()

	return ctx, func(result *dynamo.Result, err error) {
		defer span.End()

		opt := metric.WithAttributes(attribute.String("oscsim.op", name))
		elapsed := float64(time.Since(start).Microseconds()) / 1000

		if result != nil {
			span.SetAttributes(
				attribute.Int("oscsim.steps_taken", result.StepsTaken),
				attribute.Bool("oscsim.finite", result.Finite()),
			)
			if r.steps != nil {
				r.steps.Add(ctx, int64(result.StepsTaken), opt)
			}
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if r.failures != nil {
				r.failures.Add(ctx, 1, opt)
			}
		} else if r.runs != nil {
			r.runs.Add(ctx, 1, opt)
		}

		if r.duration != nil {
			r.duration.Record(ctx, elapsed, opt)
		}
	}
}
