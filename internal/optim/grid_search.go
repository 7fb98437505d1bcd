package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
	"github.com/san-kum/oscsim/internal/metrics"
	"github.com/san-kum/oscsim/internal/physics"
)

var (
	ErrEmptyGrid     = errors.New("optim: empty grid")
	ErrUnknownParam  = errors.New("optim: unknown parameter")
	ErrUnknownMetric = errors.New("optim: unknown metric")
	ErrParamRange    = errors.New("optim: parameter value out of range")
)

// Goal selects whether lower or higher metric values rank first.
type Goal int

const (
	Minimize Goal = iota
	Maximize
)

// Point is one evaluated grid combination.
type Point struct {
	Values map[string]float64
	Params dynamo.Params
	Score  float64
	Result *dynamo.Result
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// WithWorkers bounds the number of concurrent runs; zero uses GOMAXPROCS.
func (g *GridSearch) WithWorkers(n int) *GridSearch {
	g.workers = n
	return g
}

// Size is the number of combinations in the grid.
func (g *GridSearch) Size() int {
	if len(g.paramNames) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Points expands the grid over base in row-major order, last parameter
// varying fastest.
func (g *GridSearch) Points(base dynamo.Params) ([]Point, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}
	if g.Size() == 0 {
		return nil, ErrEmptyGrid
	}
	for i, name := range g.paramNames {
		for _, val := range g.ranges[i] {
			scratch := base
			if err := SetParam(&scratch, name, val); err != nil {
				return nil, err
			}
		}
	}

	points := make([]Point, 0, g.Size())
	g.expand(0, make(map[string]float64), base, &points)
	return points, nil
}

func (g *GridSearch) expand(depth int, current map[string]float64, p dynamo.Params, out *[]Point) {
	if depth == len(g.paramNames) {
		values := make(map[string]float64, len(current))
		for k, v := range current {
			values[k] = v
		}
		*out = append(*out, Point{Values: values, Params: p})
		return
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := p
		_ = SetParam(&next, name, val) // checked in Points
		current[name] = val
		g.expand(depth+1, current, next, out)
	}
	delete(current, name)
}

// Search runs every combination concurrently and returns the points ranked
// by metricName, best first. Combinations whose metric is not finite rank
// last. policy carries MaxSteps/Strict/RejectNonFinite; its Steps and Dt are
// taken from each point.
func (g *GridSearch) Search(ctx context.Context, base dynamo.Params, policy dynamo.Config, metricName string, goal Goal) ([]Point, error) {
	if !knownMetric(metricName) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metricName)
	}

	points, err := g.Points(base)
	if err != nil {
		return nil, err
	}

	jobs := make([]dynamo.Job, len(points))
	for i, pt := range points {
		cfg := policy
		cfg.Steps = pt.Params.Steps
		cfg.Dt = pt.Params.Dt
		jobs[i] = dynamo.Job{
			System:  physics.FromParams(pt.Params),
			X0:      pt.Params.InitialState(),
			Config:  cfg,
			Metrics: metrics.Defaults,
		}
	}

	ensemble := dynamo.NewEnsemble(func() dynamo.Integrator { return integrators.NewSymplecticEuler() }, g.workers)
	results, err := ensemble.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	for i := range points {
		points[i].Result = results[i]
		points[i].Score = results[i].Metrics[metricName]
	}

	sort.SliceStable(points, func(i, j int) bool {
		return better(points[i].Score, points[j].Score, goal)
	})
	return points, nil
}

func better(a, b float64, goal Goal) bool {
	aOK := !math.IsNaN(a) && !math.IsInf(a, 0)
	bOK := !math.IsNaN(b) && !math.IsInf(b, 0)
	if aOK != bOK {
		return aOK
	}
	if !aOK {
		return false
	}
	if goal == Maximize {
		return a > b
	}
	return a < b
}

func knownMetric(name string) bool {
	for _, m := range metrics.Defaults() {
		if m.Name() == name {
			return true
		}
	}
	return false
}

// SetParam assigns a sweepable parameter by name. Physical coefficients go
// through the oscillator's own setter; steps is truncated to an integer and
// must lie in [1, MaxInt32].
func SetParam(p *dynamo.Params, name string, value float64) error {
	switch name {
	case "mass", "stiffness", "damping":
		var sys dynamo.Configurable = physics.FromParams(*p)
		if err := sys.SetParam(name, value); err != nil {
			return err
		}
		coeffs := sys.GetParams()
		p.Mass, p.Stiffness, p.Damping = coeffs["mass"], coeffs["stiffness"], coeffs["damping"]
	case "displacement", "x0":
		p.Displacement = value
	case "velocity", "v0":
		p.Velocity = value
	case "dt":
		p.Dt = value
	case "steps":
		if math.IsNaN(value) || value < 1 || value > math.MaxInt32 {
			return fmt.Errorf("%w: steps=%g", ErrParamRange, value)
		}
		p.Steps = int(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return nil
}
