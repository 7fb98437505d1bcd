package analysis

import (
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

type Regime string

const (
	Undamped    Regime = "undamped"
	Underdamped Regime = "underdamped"
	Critical    Regime = "critically damped"
	Overdamped  Regime = "overdamped"
	Degenerate  Regime = "degenerate"
)

// criticalTolerance is the band around zeta=1 reported as critical damping.
const criticalTolerance = 1e-9

// Characteristics are the closed-form properties of the continuous system
// m*a + c*v + k*x = 0.
type Characteristics struct {
	NaturalFrequency float64 // omega_0 = sqrt(k/m), rad/s
	DampingRatio     float64 // zeta = c / (2*sqrt(k*m))
	DampedFrequency  float64 // omega_d = omega_0*sqrt(1-zeta^2), rad/s; 0 unless underdamped
	Period           float64 // 2*pi/omega_d, s; +Inf when not oscillating
	Regime           Regime
}

// EnergyFrequency is the frequency in Hz at which kinetic and potential
// energy exchange, twice the oscillation frequency.
func (c Characteristics) EnergyFrequency() float64 {
	if c.DampedFrequency == 0 {
		return 0
	}
	return 2 * c.DampedFrequency / (2 * math.Pi)
}

func Characterize(p dynamo.Params) Characteristics {
	if !(p.Mass > 0) || !(p.Stiffness > 0) || p.Damping < 0 {
		return Characteristics{Regime: Degenerate, Period: math.Inf(1)}
	}

	w0 := math.Sqrt(p.Stiffness / p.Mass)
	zeta := p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))

	c := Characteristics{
		NaturalFrequency: w0,
		DampingRatio:     zeta,
		Period:           math.Inf(1),
	}

	switch {
	case zeta == 0:
		c.Regime = Undamped
	case math.Abs(zeta-1) <= criticalTolerance:
		c.Regime = Critical
	case zeta < 1:
		c.Regime = Underdamped
	default:
		c.Regime = Overdamped
	}

	if zeta < 1 && c.Regime != Critical {
		c.DampedFrequency = w0 * math.Sqrt(1-zeta*zeta)
		c.Period = 2 * math.Pi / c.DampedFrequency
	}

	return c
}
