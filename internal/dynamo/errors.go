package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidConfig indicates a non-positive step count or time step.
	ErrInvalidConfig = errors.New("dynamo: invalid run configuration")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrNonFinite indicates a sample contained NaN or Inf.
	ErrNonFinite = errors.New("dynamo: non-finite result (NaN or Inf detected)")

	// ErrStepLimit indicates the requested step count exceeds the configured bound.
	ErrStepLimit = errors.New("dynamo: step count exceeds limit")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
