package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
)

func TestOscillatorAcceleration_Equilibrium(t *testing.T) {
	osc := NewDampedOscillator(2, 10, 0.5)
	if a := osc.Acceleration(dynamo.State{}); a != 0 {
		t.Errorf("acceleration at equilibrium should be 0, got %f", a)
	}
}

func TestOscillatorAcceleration_Displaced(t *testing.T) {
	osc := NewDampedOscillator(2, 10, 0.5)
	a := osc.Acceleration(dynamo.State{Position: 1.0, Velocity: 2.0})

	expected := (-10*1.0 - 0.5*2.0) / 2
	if math.Abs(a-expected) > 1e-12 {
		t.Errorf("expected acceleration %f, got %f", expected, a)
	}
}

func TestOscillatorAcceleration_ZeroMass(t *testing.T) {
	osc := NewDampedOscillator(0, 1, 0)
	a := osc.Acceleration(dynamo.State{Position: 1})
	if !math.IsInf(a, -1) {
		t.Errorf("expected -Inf, got %f", a)
	}
}

func TestOscillatorEnergy(t *testing.T) {
	osc := NewDampedOscillator(1, 10, 0)

	x := dynamo.State{Position: 1.0}
	if pe := osc.PotentialEnergy(x); pe != 5.0 {
		t.Errorf("expected PE 5, got %f", pe)
	}
	if ke := osc.KineticEnergy(x); ke != 0 {
		t.Errorf("expected KE 0, got %f", ke)
	}

	x = dynamo.State{Velocity: math.Sqrt(10)}
	if math.Abs(osc.Energy(x)-5.0) > 1e-12 {
		t.Errorf("expected total 5, got %f", osc.Energy(x))
	}
}

func TestOscillatorValidate(t *testing.T) {
	tests := []struct {
		name string
		osc  *DampedOscillator
		ok   bool
	}{
		{"valid", NewDampedOscillator(1, 1, 0.1), true},
		{"zero mass", NewDampedOscillator(0, 1, 0), false},
		{"negative mass", NewDampedOscillator(-1, 1, 0), false},
		{"NaN mass", NewDampedOscillator(math.NaN(), 1, 0), false},
		{"Inf stiffness", NewDampedOscillator(1, math.Inf(1), 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.osc.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestOscillatorParams(t *testing.T) {
	osc := FromParams(dynamo.Params{Mass: 3, Stiffness: 4, Damping: 5})

	if err := osc.SetParam("damping", 0.7); err != nil {
		t.Fatal(err)
	}
	if err := osc.SetParam("length", 1); err == nil {
		t.Error("expected error for unknown param")
	}

	got := osc.GetParams()
	if got["mass"] != 3 || got["stiffness"] != 4 || got["damping"] != 0.7 {
		t.Errorf("unexpected params %v", got)
	}
}
