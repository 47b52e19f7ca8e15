// Package phase bins amplitude samples by their phase relative to a
// reference frequency.
package phase

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrShortSlice means the slice holds less than one normalisation window.
	ErrShortSlice = errors.New("phase: slice shorter than one window")
	// ErrEmptyDistribution means no sample contributed any weight.
	ErrEmptyDistribution = errors.New("phase: no sample contributed weight")
)

// Mode selects how a sample contributes to its quant.
type Mode int

const (
	// Threshold adds 1 for every sample at the local peak.
	Threshold Mode = iota
	// Power adds (|s|+Epsilon)^Power, which vanishes away from the peak.
	Power
)

func (m Mode) String() string {
	switch m {
	case Threshold:
		return "threshold"
	case Power:
		return "power"
	}
	return "unknown"
}

// ParseMode accepts the names produced by String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "threshold":
		return Threshold, true
	case "power":
		return Power, true
	}
	return Threshold, false
}

const (
	DefaultWindow    = 512
	DefaultThreshold = 0.9999
	DefaultEpsilon   = 0.01
	DefaultPower     = 64
)

// Distribution is one weight per finest quant.
type Distribution []float64

// Mapper turns sample windows into distributions.
type Mapper struct {
	QuantRate int
	Mode      Mode
	Window    int
	Threshold float64
	Epsilon   float64
	Power     float64
	// Doubling maps one reference period onto half a turn of the wheel.
	Doubling bool
}

// NewMapper returns a mapper with the default window, threshold and
// power-mode constants.
func NewMapper(quantRate int, mode Mode) *Mapper {
	return &Mapper{
		QuantRate: quantRate,
		Mode:      mode,
		Window:    DefaultWindow,
		Threshold: DefaultThreshold,
		Epsilon:   DefaultEpsilon,
		Power:     DefaultPower,
		Doubling:  true,
	}
}

// Normalize divides every full window of slice by its peak magnitude.
// The trailing partial window is dropped. Silent windows stay zero.
func (m *Mapper) Normalize(slice []float64) []float64 {
	n := len(slice) - len(slice)%m.Window
	out := make([]float64, n)
	for lo := 0; lo < n; lo += m.Window {
		w := slice[lo : lo+m.Window]
		peak := floats.Norm(w, math.Inf(1))
		if peak == 0 {
			continue
		}
		floats.ScaleTo(out[lo:lo+m.Window], 1/peak, w)
	}
	return out
}

// Phase returns the normalised phase in [0,1) of absolute sample index idx.
func (m *Mapper) Phase(idx int, sampleRate, freq float64) float64 {
	turns := float64(idx) / sampleRate * freq
	if m.Doubling {
		turns *= 2
	}
	return math.Mod(math.Mod(turns, 1)+1, 1)
}

func (m *Mapper) weight(s float64) float64 {
	a := math.Abs(s)
	if m.Mode == Power {
		return math.Exp(m.Power * math.Log(a+m.Epsilon))
	}
	if a > m.Threshold {
		return 1
	}
	return 0
}

// Map bins slice, whose first sample has absolute index t0, into QuantRate
// quants. The distribution always has QuantRate entries, even when an error
// is returned with it.
func (m *Mapper) Map(slice []float64, t0 int, sampleRate, freq float64) (Distribution, error) {
	if len(slice) < m.Window {
		return make(Distribution, m.QuantRate), ErrShortSlice
	}
	return m.MapNormalized(m.Normalize(slice), t0, sampleRate, freq)
}

// MapNormalized is Map for a slice that already went through Normalize.
func (m *Mapper) MapNormalized(norm []float64, t0 int, sampleRate, freq float64) (Distribution, error) {
	dist := make(Distribution, m.QuantRate)
	if len(norm) < m.Window {
		return dist, ErrShortSlice
	}
	for i, s := range norm {
		w := m.weight(s)
		if w == 0 {
			continue
		}
		q := int(m.Phase(t0+i, sampleRate, freq) * float64(m.QuantRate))
		if q >= m.QuantRate {
			q = m.QuantRate - 1
		}
		dist[q] += w
	}
	if floats.Sum(dist) == 0 {
		return dist, ErrEmptyDistribution
	}
	return dist, nil
}
