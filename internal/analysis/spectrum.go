package analysis

import (
	"fmt"
	"math/cmplx"
	"sort"

	"github.com/mjibson/go-dsp/fft"
)

type Spectrum struct {
	Freq      []float64
	Amplitude []float64
}

// AmplitudeSpectrum returns the one-sided amplitude spectrum of values
// sampled every dt seconds. A pure sinusoid of amplitude A on an exact
// bin shows up with amplitude A.
func AmplitudeSpectrum(values []float64, dt float64) (*Spectrum, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("spectrum needs at least 2 samples, got %d", n)
	}
	if !(dt > 0) {
		return nil, fmt.Errorf("spectrum needs a positive sampling interval, got %g", dt)
	}

	coeffs := fft.FFTReal(values)
	half := n/2 + 1
	s := &Spectrum{
		Freq:      make([]float64, half),
		Amplitude: make([]float64, half),
	}
	for k := 0; k < half; k++ {
		amp := cmplx.Abs(coeffs[k]) / float64(n)
		if k > 0 && k < n-k {
			amp *= 2
		}
		s.Freq[k] = float64(k) / (float64(n) * dt)
		s.Amplitude[k] = amp
	}
	return s, nil
}

// Dominant returns the strongest non-DC component.
func (s *Spectrum) Dominant() (freq, amplitude float64) {
	best := -1
	for k := 1; k < len(s.Amplitude); k++ {
		if best < 0 || s.Amplitude[k] > s.Amplitude[best] {
			best = k
		}
	}
	if best < 0 {
		return 0, 0
	}
	return s.Freq[best], s.Amplitude[best]
}

// Peaks returns up to n component indices sorted by decreasing amplitude,
// DC excluded.
func (s *Spectrum) Peaks(n int) []int {
	idx := make([]int, 0, len(s.Amplitude))
	for k := 1; k < len(s.Amplitude); k++ {
		if k+1 < len(s.Amplitude) && s.Amplitude[k] < s.Amplitude[k+1] {
			continue
		}
		if s.Amplitude[k] < s.Amplitude[k-1] {
			continue
		}
		idx = append(idx, k)
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return s.Amplitude[idx[i]] > s.Amplitude[idx[j]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}
