package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/oscsim/internal/dynamo"
)

const (
	DefaultMass      = 1.0
	DefaultStiffness = 1.0
	DefaultDamping   = 0.0
)

var (
	_ dynamo.System       = (*DampedOscillator)(nil)
	_ dynamo.Hamiltonian  = (*DampedOscillator)(nil)
	_ dynamo.Configurable = (*DampedOscillator)(nil)
	_ dynamo.Validator    = (*DampedOscillator)(nil)
)

// DampedOscillator is a single mass on a linear spring with viscous damping:
// m*a = -k*x - c*v.
type DampedOscillator struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewDampedOscillator(mass, stiffness, damping float64) *DampedOscillator {
	return &DampedOscillator{
		Mass:      mass,
		Stiffness: stiffness,
		Damping:   damping,
	}
}

func FromParams(p dynamo.Params) *DampedOscillator {
	return NewDampedOscillator(p.Mass, p.Stiffness, p.Damping)
}

// Acceleration divides by Mass unchecked; a zero mass yields Inf or NaN.
func (o *DampedOscillator) Acceleration(x dynamo.State) float64 {
	springForce := -o.Stiffness * x.Position
	dampingForce := -o.Damping * x.Velocity
	netForce := springForce + dampingForce
	return netForce / o.Mass
}

func (o *DampedOscillator) KineticEnergy(x dynamo.State) float64 {
	v := x.Velocity
	return 0.5 * o.Mass * (v * v)
}

func (o *DampedOscillator) PotentialEnergy(x dynamo.State) float64 {
	p := x.Position
	return 0.5 * o.Stiffness * (p * p)
}

func (o *DampedOscillator) Energy(x dynamo.State) float64 {
	return o.KineticEnergy(x) + o.PotentialEnergy(x)
}

func (o *DampedOscillator) Validate() error {
	if !(o.Mass > 0) {
		return fmt.Errorf("%w: mass must be positive, got %g", dynamo.ErrParameterBounds, o.Mass)
	}
	for name, v := range map[string]float64{"stiffness": o.Stiffness, "damping": o.Damping} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %g", dynamo.ErrParameterBounds, name, v)
		}
	}
	return nil
}

func (o *DampedOscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":      o.Mass,
		"stiffness": o.Stiffness,
		"damping":   o.Damping,
	}
}

func (o *DampedOscillator) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		o.Mass = value
	case "stiffness":
		o.Stiffness = value
	case "damping":
		o.Damping = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
