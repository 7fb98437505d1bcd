// Package form turns user-entered text into simulation parameters.
//
// It is the only place non-numeric input is handled: when any field fails
// to parse, [Parse] returns an [*Error] and the caller must not run the
// simulation.
package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Field keys.
const (
	Mass         = "mass"
	Stiffness    = "stiffness"
	Damping      = "damping"
	Displacement = "displacement"
	Velocity     = "velocity"
	Steps        = "steps"
	Dt           = "dt"
)

// UserMessage is shown to the user when input is not numeric.
const UserMessage = "Error: enter numeric values."

var ErrNotNumeric = errors.New("form: non-numeric input")

type Field struct {
	Key      string
	Label    string
	Required bool
}

// Fields lists the form in display order.
var Fields = []Field{
	{Key: Mass, Label: "Mass (kg)", Required: true},
	{Key: Stiffness, Label: "Stiffness (N/m)", Required: true},
	{Key: Damping, Label: "Damping (kg/s)", Required: true},
	{Key: Displacement, Label: "Initial displacement (m)", Required: true},
	{Key: Velocity, Label: "Initial velocity (m/s)", Required: true},
	{Key: Steps, Label: "Steps"},
	{Key: Dt, Label: "Time step (s)"},
}

// Error reports the fields that did not parse.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("form: non-numeric input in %s", strings.Join(e.Fields, ", "))
}

func (e *Error) Unwrap() error { return ErrNotNumeric }

func (e *Error) UserMessage() string { return UserMessage }

// Parse reads the five required fields and the optional step controls.
// Missing optional fields take the defaults. NaN and Inf are rejected the
// same way as text.
func Parse(values map[string]string) (dynamo.Params, error) {
	var bad []string
	p := dynamo.DefaultParams()

	floats := map[string]*float64{
		Mass:         &p.Mass,
		Stiffness:    &p.Stiffness,
		Damping:      &p.Damping,
		Displacement: &p.Displacement,
		Velocity:     &p.Velocity,
		Dt:           &p.Dt,
	}

	for _, f := range Fields {
		raw := strings.TrimSpace(values[f.Key])
		if raw == "" && !f.Required {
			continue
		}
		if f.Key == Steps {
			n, err := strconv.Atoi(raw)
			if err != nil {
				bad = append(bad, f.Key)
				continue
			}
			p.Steps = n
			continue
		}
		v, err := parseFloat(raw)
		if err != nil {
			bad = append(bad, f.Key)
			continue
		}
		*floats[f.Key] = v
	}

	if len(bad) > 0 {
		return dynamo.Params{}, &Error{Fields: bad}
	}
	return p, nil
}

// Values renders p back into field text, the inverse of Parse.
func Values(p dynamo.Params) map[string]string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return map[string]string{
		Mass:         f(p.Mass),
		Stiffness:    f(p.Stiffness),
		Damping:      f(p.Damping),
		Displacement: f(p.Displacement),
		Velocity:     f(p.Velocity),
		Steps:        strconv.Itoa(p.Steps),
		Dt:           f(p.Dt),
	}
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
