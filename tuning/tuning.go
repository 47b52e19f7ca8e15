// Package tuning holds the reference frequency and the discrete adjustments
// a user can make to it.
package tuning

import (
	"fmt"
	"math"

	"go-phasewheel/note"
)

const MinFreq = 1.0

// MaxFreq is 62 semitones above A4.
var MaxFreq = 440 * math.Exp2(62.0/12)

// Intent is one discrete adjustment.
type Intent int

const (
	HertzDown Intent = iota
	HertzUp
	CentiHertzDown
	CentiHertzUp
	OctaveDown
	OctaveUp
	SemitoneDown
	SemitoneUp
	CentDown
	CentUp
)

var intentNames = map[Intent]string{
	HertzDown:      "-1 Hz",
	HertzUp:        "+1 Hz",
	CentiHertzDown: "-0.01 Hz",
	CentiHertzUp:   "+0.01 Hz",
	OctaveDown:     "-1 octave",
	OctaveUp:       "+1 octave",
	SemitoneDown:   "-1 semitone",
	SemitoneUp:     "+1 semitone",
	CentDown:       "-1 cent",
	CentUp:         "+1 cent",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// Clamp limits f to [MinFreq, MaxFreq]. NaN falls to MinFreq.
func Clamp(f float64) float64 {
	if math.IsNaN(f) {
		return MinFreq
	}
	return math.Min(math.Max(MinFreq, f), MaxFreq)
}

// State is the tuning reference read by every frame.
type State struct {
	A4   float64
	freq float64
}

// NewState starts at freq (clamped) with the given A4 pitch.
func NewState(freq, a4 float64) *State {
	if a4 <= 0 {
		a4 = note.DefaultA4
	}
	return &State{A4: a4, freq: Clamp(freq)}
}

// Freq returns the reference frequency in Hz.
func (s *State) Freq() float64 {
	return s.freq
}

// Set replaces the reference, clamped.
func (s *State) Set(f float64) {
	s.freq = Clamp(f)
}

// Apply resolves an intent against the current reference.
func (s *State) Apply(i Intent) {
	f := s.freq
	switch i {
	case HertzDown:
		f = note.SnapHertz(f - 1)
	case HertzUp:
		f = note.SnapHertz(f + 1)
	case CentiHertzDown:
		f -= 0.01
	case CentiHertzUp:
		f += 0.01
	case OctaveDown:
		f = note.Snap(f, s.A4, note.Delta{Octaves: -1})
	case OctaveUp:
		f = note.Snap(f, s.A4, note.Delta{Octaves: 1})
	case SemitoneDown:
		f = note.Snap(f, s.A4, note.Delta{Semitones: -1, ResetCents: true})
	case SemitoneUp:
		f = note.Snap(f, s.A4, note.Delta{Semitones: 1, ResetCents: true})
	case CentDown:
		f = note.Snap(f, s.A4, note.Delta{Cents: -1})
	case CentUp:
		f = note.Snap(f, s.A4, note.Delta{Cents: 1})
	}
	s.Set(f)
}

// Hz formats the reference like "440.00 Hz".
func (s *State) Hz() string {
	return fmt.Sprintf("%.2f Hz", s.freq)
}

// Note returns the musical reading of the reference.
func (s *State) Note() note.Label {
	return note.Name(s.freq, s.A4)
}
