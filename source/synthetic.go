package source

import (
	"go-phasewheel/synth"
)

// Synthetic is a generated chirp held in memory.
type Synthetic struct {
	rate    float64
	period  int
	samples []float64
}

// NewSynthetic renders p with Repeat forced on so wrapped windows never
// run off the end.
func NewSynthetic(p synth.Params) (*Synthetic, error) {
	p.Repeat = true
	samples, err := synth.Generate(p)
	if err != nil {
		return nil, err
	}
	return &Synthetic{rate: p.SampleRate, period: p.Period(), samples: samples}, nil
}

// NewLooped wraps an existing buffer. samples beyond period are the
// read-ahead tail.
func NewLooped(samples []float64, period int, rate float64) *Synthetic {
	return &Synthetic{rate: rate, period: period, samples: samples}
}

func (s *Synthetic) SampleRate() float64 { return s.rate }
func (s *Synthetic) Len() int            { return s.period }

// Samples exposes the whole buffer including the read-ahead tail.
func (s *Synthetic) Samples() []float64 { return s.samples }

func (s *Synthetic) Read(start, count int) []float64 {
	return readRange(s.samples, start, count)
}

func readRange(buf []float64, start, count int) []float64 {
	if start < 0 || count <= 0 || start >= len(buf) {
		return nil
	}
	end := min(start+count, len(buf))
	out := make([]float64, end-start)
	copy(out, buf[start:end])
	return out
}
