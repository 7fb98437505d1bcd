package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum zero-pads data to the next power of two and returns the
// magnitudes of the non-negative frequency bins.
func PowerSpectrum(data []float64) []float64 {
	y := fft.FFTReal(padPow2(data))
	ps := make([]float64, len(y)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(y[i])
	}

	return ps
}

// Spectrum is the one-sided amplitude spectrum of a series sampled every dt
// seconds. Any length works; freqs[i] is i/(n*dt) Hz and amplitudes are
// scaled so a unit sine on an exact bin reads 1.
func Spectrum(data []float64, dt float64) (freqs, amps []float64) {
	n := len(data)
	if n < 2 || dt <= 0 {
		return nil, nil
	}

	y := fft.FFTReal(data)

	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) / (float64(n) * dt)
		mag := cmplx.Abs(y[i])
		if i == 0 {
			amps[i] = mag / float64(n)
		} else {
			amps[i] = 2 * mag / float64(n)
		}
	}
	return freqs, amps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of a series sampled every dt seconds. The mean is removed first
// so a decaying offset does not swamp the oscillation.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 4 || dt <= 0 {
		return 0
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	freqs, amps := Spectrum(centered, dt)

	maxAmp := 0.0
	maxIdx := 0
	for i := 1; i < len(amps); i++ {
		if amps[i] > maxAmp {
			maxAmp = amps[i]
			maxIdx = i
		}
	}

	return freqs[maxIdx]
}

func padPow2(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}
