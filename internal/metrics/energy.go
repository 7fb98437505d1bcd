package metrics

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// EnergyDrift is the largest relative deviation of total energy from the
// first recorded sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Sample) {
	if e.samples == 0 {
		e.initialEnergy = s.Total
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.Total-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// EnergyDecay is the ratio of the last total energy to the first.
type EnergyDecay struct {
	name  string
	first float64
	last  float64
	seen  bool
}

func NewEnergyDecay() *EnergyDecay {
	return &EnergyDecay{name: "energy_decay"}
}

func (e *EnergyDecay) Name() string { return e.name }

func (e *EnergyDecay) Observe(s dynamo.Sample) {
	if !e.seen {
		e.first = s.Total
		e.seen = true
	}
	e.last = s.Total
}

func (e *EnergyDecay) Value() float64 {
	if e.first == 0 {
		return 1.0
	}
	return e.last / e.first
}

func (e *EnergyDecay) Reset() {
	e.first, e.last, e.seen = 0, 0, false
}

type PeakKinetic struct {
	name string
	peak float64
}

func NewPeakKinetic() *PeakKinetic {
	return &PeakKinetic{name: "peak_kinetic"}
}

func (p *PeakKinetic) Name() string { return p.name }

func (p *PeakKinetic) Observe(s dynamo.Sample) {
	if s.Kinetic > p.peak {
		p.peak = s.Kinetic
	}
}

func (p *PeakKinetic) Value() float64 { return p.peak }

func (p *PeakKinetic) Reset() { p.peak = 0 }

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(),
		NewEnergyDecay(),
		NewPeakKinetic(),
		NewFinite(),
	}
}
