package integrators

import "github.com/san-kum/oscsim/internal/dynamo"

// SymplecticEuler is the semi-implicit Euler scheme: velocity is updated
// first and the updated velocity moves the position within the same step.
// Swapping the two updates gives explicit Euler, whose energy grows
// without bound on an undamped oscillator.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (e *SymplecticEuler) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	a := sys.Acceleration(x)
	x.Velocity += a * dt
	x.Position += x.Velocity * dt
	x.Time += dt
	return x
}
