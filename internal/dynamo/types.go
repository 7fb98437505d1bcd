package dynamo

import "math"

const (
	DefaultSteps = 1000
	DefaultDt    = 0.01
)

// State is the mutable oscillator state owned by a single run.
type State struct {
	Position float64
	Velocity float64
	Time     float64
}

func (s State) IsValid() bool {
	return finite(s.Position) && finite(s.Velocity) && finite(s.Time)
}

// Params is the immutable input of one run.
type Params struct {
	Mass         float64 `json:"mass" yaml:"mass"`
	Stiffness    float64 `json:"stiffness" yaml:"stiffness"`
	Damping      float64 `json:"damping" yaml:"damping"`
	Displacement float64 `json:"displacement" yaml:"displacement"`
	Velocity     float64 `json:"velocity" yaml:"velocity"`
	Steps        int     `json:"steps" yaml:"steps"`
	Dt           float64 `json:"dt" yaml:"dt"`
}

func DefaultParams() Params {
	return Params{
		Mass:         1.0,
		Stiffness:    1.0,
		Damping:      0.0,
		Displacement: 1.0,
		Velocity:     0.0,
		Steps:        DefaultSteps,
		Dt:           DefaultDt,
	}
}

// WithDefaults fills a zero step count or time step with the defaults.
func (p Params) WithDefaults() Params {
	if p.Steps == 0 {
		p.Steps = DefaultSteps
	}
	if p.Dt == 0 {
		p.Dt = DefaultDt
	}
	return p
}

// InitialState places the oscillator at its initial conditions at t=0.
func (p Params) InitialState() State {
	return State{Position: p.Displacement, Velocity: p.Velocity}
}

// Duration is the simulated horizon Steps*Dt.
func (p Params) Duration() float64 {
	return float64(p.Steps) * p.Dt
}

// Sample is one recorded energy tuple.
type Sample struct {
	Time      float64 `json:"time"`
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
	Total     float64 `json:"total"`
}

func (s Sample) IsValid() bool {
	return finite(s.Time) && finite(s.Kinetic) && finite(s.Potential) && finite(s.Total)
}

// Series holds the four index-aligned output sequences.
type Series struct {
	Times     []float64 `json:"times"`
	Kinetic   []float64 `json:"kinetic"`
	Potential []float64 `json:"potential"`
	Total     []float64 `json:"total"`
}

func NewSeries(capacity int) Series {
	return Series{
		Times:     make([]float64, 0, capacity),
		Kinetic:   make([]float64, 0, capacity),
		Potential: make([]float64, 0, capacity),
		Total:     make([]float64, 0, capacity),
	}
}

func (s *Series) Append(sm Sample) {
	s.Times = append(s.Times, sm.Time)
	s.Kinetic = append(s.Kinetic, sm.Kinetic)
	s.Potential = append(s.Potential, sm.Potential)
	s.Total = append(s.Total, sm.Total)
}

func (s Series) Len() int { return len(s.Times) }

func (s Series) At(i int) Sample {
	return Sample{
		Time:      s.Times[i],
		Kinetic:   s.Kinetic[i],
		Potential: s.Potential[i],
		Total:     s.Total[i],
	}
}

// Finite reports whether every recorded value is finite.
func (s Series) Finite() bool {
	for i := 0; i < s.Len(); i++ {
		if !s.At(i).IsValid() {
			return false
		}
	}
	return true
}

// Last returns the final sample and false when the series is empty.
func (s Series) Last() (Sample, bool) {
	if s.Len() == 0 {
		return Sample{}, false
	}
	return s.At(s.Len() - 1), true
}

// System is the force model advanced by an Integrator.
type System interface {
	Acceleration(x State) float64
	KineticEnergy(x State) float64
	PotentialEnergy(x State) float64
}

// Hamiltonian is implemented by systems that report their total mechanical
// energy directly.
type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(sys System, x State, dt float64) State
}

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, x State, s Sample)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Config controls a run. Strict, RejectNonFinite and MaxSteps are opt-in;
// the zero values reproduce silent NaN/Inf propagation.
type Config struct {
	Steps           int
	Dt              float64
	MaxSteps        int
	Strict          bool
	RejectNonFinite bool
}

func DefaultConfig() Config {
	return Config{
		Steps: DefaultSteps,
		Dt:    DefaultDt,
	}
}

// Config derives the run configuration for p with no opt-in policies.
func (p Params) Config() Config {
	return Config{Steps: p.Steps, Dt: p.Dt}
}

type Result struct {
	Series
	Metrics    map[string]float64
	StepsTaken int
	Final      State
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
