// Package wheel holds the ring/quant hierarchy and the multi-resolution
// aggregation that turns a distribution over the finest quants into
// per-ring opacities.
package wheel

import "math"

const (
	MinRings = 3
	MaxRings = 10
)

// quantsPerGroup keeps the finest ring near a few hundred quants.
var quantsPerGroup = map[int]int{
	3:  50,
	4:  30,
	5:  15,
	6:  10,
	7:  5,
	8:  3,
	9:  1,
	10: 1,
}

// Config is the ring layout. QuantRate is always QuantsPerGroup << Rings,
// so every ring k in [0, Rings) divides it evenly.
type Config struct {
	Rings          int
	QuantsPerGroup int
}

// NewConfig clamps rings into [MinRings, MaxRings] and looks up its group size.
func NewConfig(rings int) Config {
	rings = min(max(rings, MinRings), MaxRings)
	return Config{Rings: rings, QuantsPerGroup: quantsPerGroup[rings]}
}

// ParseRings rounds a raw ring-count argument to the nearest integer and
// clamps it. Non-finite input is ignored (ok is false).
func ParseRings(v float64) (rings int, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(math.Min(math.Max(math.Round(v), MinRings), MaxRings)), true
}

// QuantRate is the number of quants on the finest ring.
func (c Config) QuantRate() int {
	return c.QuantsPerGroup << c.Rings
}

// RingSize is the number of quants on ring k.
func (c Config) RingSize(k int) int {
	return c.QuantRate() >> k
}
