package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
)

type unitOscillator struct{}

func (u *unitOscillator) Acceleration(x dynamo.State) float64  { return -x.Position }
func (u *unitOscillator) KineticEnergy(x dynamo.State) float64 { return 0.5 * x.Velocity * x.Velocity }
func (u *unitOscillator) PotentialEnergy(x dynamo.State) float64 {
	return 0.5 * x.Position * x.Position
}

func TestSymplecticEulerSingleStep(t *testing.T) {
	integ := NewSymplecticEuler()
	x := integ.Step(&unitOscillator{}, dynamo.State{Position: 1}, 0.1)

	if math.Abs(x.Velocity-(-0.1)) > 1e-15 {
		t.Errorf("velocity: got %.17g, expected -0.1", x.Velocity)
	}
	if math.Abs(x.Position-0.99) > 1e-15 {
		t.Errorf("position: got %.17g, expected 0.99", x.Position)
	}
	if x.Time != 0.1 {
		t.Errorf("time: got %g, expected 0.1", x.Time)
	}
}

func TestSymplecticEulerUsesUpdatedVelocity(t *testing.T) {
	integ := NewSymplecticEuler()
	x := integ.Step(&unitOscillator{}, dynamo.State{Position: 1}, 0.5)

	// explicit Euler would leave the position at 1.0
	if x.Position != 0.75 {
		t.Errorf("expected position 0.75, got %g", x.Position)
	}
}

func TestSymplecticEulerDoesNotMutateInput(t *testing.T) {
	integ := NewSymplecticEuler()
	x0 := dynamo.State{Position: 1, Velocity: 2, Time: 3}
	_ = integ.Step(&unitOscillator{}, x0, 0.1)

	if x0 != (dynamo.State{Position: 1, Velocity: 2, Time: 3}) {
		t.Errorf("input state modified: %+v", x0)
	}
}

func TestSymplecticEulerBoundedEnergy(t *testing.T) {
	integ := NewSymplecticEuler()
	dyn := &unitOscillator{}
	x := dynamo.State{Position: 1}
	e0 := dyn.KineticEnergy(x) + dyn.PotentialEnergy(x)

	for i := 0; i < 100000; i++ {
		x = integ.Step(dyn, x, 0.01)
		e := dyn.KineticEnergy(x) + dyn.PotentialEnergy(x)
		if math.Abs(e-e0)/e0 > 0.01 {
			t.Fatalf("energy drift %.4f at step %d", math.Abs(e-e0)/e0, i)
		}
	}
}
