// Package analysis looks for oscillation in recorded traces.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of each non-negative frequency bin of
// data after removing its mean. Bin k is k/(len(data)*period) Hz.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
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

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i]) / float64(len(data))
	}
	return ps
}

// Peak is the strongest oscillation in a trace.
type Peak struct {
	Frequency float64
	Magnitude float64
}

// DominantFrequency finds the largest non-DC bin of data sampled every
// period seconds. A constant trace reports a zero Peak.
func DominantFrequency(data []float64, period float64) Peak {
	ps := PowerSpectrum(data)
	best := Peak{}
	for k := 1; k < len(ps); k++ {
		if ps[k] > best.Magnitude {
			best = Peak{Frequency: float64(k) / (float64(len(data)) * period), Magnitude: ps[k]}
		}
	}
	return best
}

// TrackingError is setpoint minus each sample, skipping the first skip
// samples so a transient does not dominate the spectrum.
func TrackingError(samples []float64, setpoint float64, skip int) []float64 {
	if skip >= len(samples) {
		return nil
	}
	out := make([]float64, 0, len(samples)-skip)
	for _, v := range samples[skip:] {
		out = append(out, setpoint-v)
	}
	return out
}

// RMS is the root mean square of data, zero when empty.
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(data)))
}
