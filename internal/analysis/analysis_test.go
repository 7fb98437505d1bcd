package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/experiment"
)

func TestCharacterize(t *testing.T) {
	tests := []struct {
		name    string
		damping float64
		regime  Regime
	}{
		{"undamped", 0, Undamped},
		{"light", 0.5, Underdamped},
		{"critical", 2, Critical},
		{"heavy", 3, Overdamped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Characterize(dynamo.Params{Mass: 1, Stiffness: 1, Damping: tt.damping})
			if c.Regime != tt.regime {
				t.Errorf("expected %s, got %s", tt.regime, c.Regime)
			}
			if c.NaturalFrequency != 1 {
				t.Errorf("expected omega0 1, got %f", c.NaturalFrequency)
			}
			if math.Abs(c.DampingRatio-tt.damping/2) > 1e-12 {
				t.Errorf("expected zeta %f, got %f", tt.damping/2, c.DampingRatio)
			}
		})
	}
}

func TestCharacterizeDampedFrequency(t *testing.T) {
	c := Characterize(dynamo.Params{Mass: 1, Stiffness: 1, Damping: 0.5})
	expected := math.Sqrt(1 - 0.0625)
	if math.Abs(c.DampedFrequency-expected) > 1e-12 {
		t.Errorf("expected omega_d %f, got %f", expected, c.DampedFrequency)
	}
	if math.Abs(c.Period-2*math.Pi/expected) > 1e-12 {
		t.Errorf("unexpected period %f", c.Period)
	}

	over := Characterize(dynamo.Params{Mass: 1, Stiffness: 1, Damping: 3})
	if !math.IsInf(over.Period, 1) || over.DampedFrequency != 0 {
		t.Errorf("overdamped should not oscillate: %+v", over)
	}
	if over.EnergyFrequency() != 0 {
		t.Errorf("expected zero energy frequency, got %f", over.EnergyFrequency())
	}
}

func TestCharacterizeDegenerate(t *testing.T) {
	for _, p := range []dynamo.Params{
		{Mass: 0, Stiffness: 1},
		{Mass: 1, Stiffness: 0},
		{Mass: 1, Stiffness: 1, Damping: -1},
	} {
		if c := Characterize(p); c.Regime != Degenerate {
			t.Errorf("%+v: expected degenerate, got %s", p, c.Regime)
		}
	}
}

func TestPowerSpectrumPads(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 100))
	if len(ps) != 64 {
		t.Errorf("expected 64 bins for 100 samples, got %d", len(ps))
	}
}

func TestPowerSpectrumPeak(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 4 * float64(i) / 64)
	}

	ps := PowerSpectrum(data)
	if len(ps) != 32 {
		t.Fatalf("expected 32 bins, got %d", len(ps))
	}
	if math.Abs(ps[4]-32) > 1e-9 {
		t.Errorf("expected magnitude 32 at bin 4, got %f", ps[4])
	}
	for i, v := range ps {
		if i != 4 && v > 1e-9 {
			t.Errorf("bin %d: expected 0, got %g", i, v)
		}
	}
}

func TestSpectrumUnitSine(t *testing.T) {
	dt := 0.01
	data := make([]float64, 1000)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 1.0 * float64(i) * dt)
	}

	freqs, amps := Spectrum(data, dt)
	if len(freqs) != 501 || len(amps) != 501 {
		t.Fatalf("expected 501 bins, got %d/%d", len(freqs), len(amps))
	}
	if math.Abs(freqs[10]-1.0) > 1e-12 {
		t.Errorf("expected bin 10 at 1 Hz, got %f", freqs[10])
	}
	if math.Abs(amps[10]-1.0) > 1e-6 {
		t.Errorf("expected unit amplitude at 1 Hz, got %f", amps[10])
	}

	if f, a := Spectrum([]float64{1}, dt); f != nil || a != nil {
		t.Error("expected no spectrum for a single sample")
	}
}

func TestDominantFrequencySine(t *testing.T) {
	dt := 0.01
	data := make([]float64, 1024)
	for i := range data {
		data[i] = math.Sin(2 * math.Pi * 1.0 * float64(i) * dt)
	}

	f := DominantFrequency(data, dt)
	if math.Abs(f-1.0) > 0.1 {
		t.Errorf("expected ~1 Hz, got %f", f)
	}
}

func TestDominantFrequencyDegenerate(t *testing.T) {
	if f := DominantFrequency([]float64{1, 2}, 0.01); f != 0 {
		t.Errorf("expected 0 for short input, got %f", f)
	}
	if f := DominantFrequency(make([]float64, 16), 0); f != 0 {
		t.Errorf("expected 0 for zero dt, got %f", f)
	}
}

func TestDominantFrequencyMatchesEnergyExchange(t *testing.T) {
	p := dynamo.Params{Mass: 1, Stiffness: 1, Displacement: 1, Steps: 4096, Dt: 0.01}
	s, err := experiment.Simulate(p)
	if err != nil {
		t.Fatal(err)
	}

	expected := Characterize(p).EnergyFrequency()
	got := DominantFrequency(s.Kinetic, p.Dt)
	if math.Abs(got-expected) > 0.03 {
		t.Errorf("expected energy frequency ~%.3f Hz, got %.3f Hz", expected, got)
	}
}
