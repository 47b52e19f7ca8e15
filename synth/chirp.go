// Package synth builds the multi-harmonic chirp test signal.
package synth

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Harmonics is the number of additive components: noise plus six chirps.
const Harmonics = 7

var (
	ErrLength     = errors.New("synth: length must be positive")
	ErrSampleRate = errors.New("synth: sample rate must be positive")
)

// Params describes one synthesis run.
type Params struct {
	SampleRate float64
	Length     int     // samples in the forward sweep
	Center     float64 // Hz
	Radius     float64 // Hz, the band is [Center-Radius, Center+Radius]
	Weights    []float64

	Normalize bool // peak-normalise the mix to [-1,1]
	Repeat    bool // append a copy of the forward sweep after the palindrome

	// Rand drives the noise harmonic. Nil means a time-seeded source.
	Rand *rand.Rand
}

// Band returns the start and stop frequency of the fundamental sweep.
func (p Params) Band() (start, stop float64) {
	return p.Center - p.Radius, p.Center + p.Radius
}

// Period is the loop length of the generated signal.
func (p Params) Period() int {
	return 2 * p.Length
}

// Cumulate replaces arr with its running sum.
func Cumulate(arr []float64) {
	for i := 1; i < len(arr); i++ {
		arr[i] += arr[i-1]
	}
}

// LinearChirp returns n samples of a sine whose frequency moves linearly
// from start to stop. The frequency ramp is integrated into phase so the
// sweep is continuous.
func LinearChirp(start, stop float64, n int, sampleRate float64) []float64 {
	step := (stop - start) / float64(n)
	phase := make([]float64, n)
	for i := range phase {
		phase[i] = start + step*float64(i)
	}
	Cumulate(phase)
	for i, ph := range phase {
		phase[i] = math.Sin(2 * math.Pi * ph / sampleRate)
	}
	return phase
}

// Generate mixes the weighted harmonics and lays them out as a palindromic
// period, optionally followed by one more forward sweep.
func Generate(p Params) ([]float64, error) {
	if p.Length <= 0 {
		return nil, ErrLength
	}
	if p.SampleRate <= 0 {
		return nil, ErrSampleRate
	}
	if len(p.Weights) > Harmonics {
		return nil, fmt.Errorf("synth: %d weights, at most %d harmonics", len(p.Weights), Harmonics)
	}

	n := p.Length
	start, stop := p.Band()
	mix := make([]float64, n)
	for k, w := range p.Weights {
		if w == 0 {
			continue
		}
		if k == 0 {
			rng := p.Rand
			if rng == nil {
				rng = rand.New(rand.NewSource(time.Now().UnixNano()))
			}
			for i := range mix {
				mix[i] += w * (2*rng.Float64() - 1)
			}
			continue
		}
		h := LinearChirp(float64(k)*start, float64(k)*stop, n, p.SampleRate)
		floats.AddScaled(mix, w, h)
	}

	if p.Normalize {
		if peak := floats.Norm(mix, math.Inf(1)); peak > 0 {
			floats.Scale(1/peak, mix)
		}
	}

	size := 2 * n
	if p.Repeat {
		size += n
	}
	out := make([]float64, size)
	copy(out, mix)
	for i, v := range mix {
		out[2*n-1-i] = v
	}
	if p.Repeat {
		copy(out[2*n:], mix)
	}
	return out, nil
}
