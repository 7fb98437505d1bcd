package dynamo

import (
	"context"
	"fmt"
)

// seriesChunk bounds the up-front allocation of a run; longer runs grow the
// series as they go.
const seriesChunk = 1 << 16

// Validator is implemented by systems that can check their own parameters.
// It is consulted only in strict runs.
type Validator interface {
	Validate() error
}

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run advances x0 for cfg.Steps fixed steps and records the energy of the
// post-step state after every step. The returned series never includes the
// initial state.
//
// On cancellation or a rejected non-finite sample the partial result is
// returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Series:  NewSeries(min(cfg.Steps, seriesChunk)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0
	dt := cfg.Dt

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, x)
			return result, ctx.Err()
		default:
		}

		x = s.integrator.Step(s.sys, x, dt)

		kinetic := s.sys.KineticEnergy(x)
		potential := s.sys.PotentialEnergy(x)
		sample := Sample{
			Time:      x.Time,
			Kinetic:   kinetic,
			Potential: potential,
			Total:     kinetic + potential,
		}

		if cfg.RejectNonFinite && !sample.IsValid() {
			s.finish(result, x)
			return result, &SimulationError{Step: i, Time: x.Time, State: x, Wrapped: ErrNonFinite}
		}

		result.Append(sample)
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnStep(i, x, sample)
		}
	}

	s.finish(result, x)
	return result, nil
}

func (s *Simulator) finish(result *Result, x State) {
	result.Final = x
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if cfg.MaxSteps > 0 && cfg.Steps > cfg.MaxSteps {
		return fmt.Errorf("%w: %d > %d", ErrStepLimit, cfg.Steps, cfg.MaxSteps)
	}
	if cfg.Strict {
		if v, ok := s.sys.(Validator); ok {
			if err := v.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
