package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/physics"
)

// Simulate integrates the damped oscillator described by p and returns the
// energy series. It is a pure function of p: degenerate physics such as a
// zero mass propagates Inf/NaN into the series instead of failing. A zero
// step count or time step takes the default; the only errors are a negative
// step count or time step.
func Simulate(p dynamo.Params) (dynamo.Series, error) {
	exp := New(Config{Params: p.WithDefaults()})
	if err := exp.Setup(nil); err != nil {
		return dynamo.Series{}, err
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		return dynamo.Series{}, err
	}
	return result.Series, nil
}

type Config struct {
	Params          dynamo.Params
	Strict          bool
	RejectNonFinite bool
	MaxSteps        int
}

func (c Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Steps:           c.Params.Steps,
		Dt:              c.Params.Dt,
		MaxSteps:        c.MaxSteps,
		Strict:          c.Strict,
		RejectNonFinite: c.RejectNonFinite,
	}
}

type Experiment struct {
	cfg       Config
	simulator *dynamo.Simulator
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(metrics []dynamo.Metric) error {
	e.simulator = dynamo.New(physics.FromParams(e.cfg.Params), integrators.NewSymplecticEuler())
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Params.InitialState(), e.cfg.RunConfig())
}

func (e *Experiment) Config() Config {
	return e.cfg
}
