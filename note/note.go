// Package note converts between frequencies and musical coordinates
// (octave, note within the octave, cents) in twelve-tone equal temperament.
package note

import (
	"fmt"
	"math"
	"strings"
)

// DefaultA4 is standard concert pitch in Hz.
const DefaultA4 = 440.0

// Names is the chromatic name table indexed by note number.
var Names = [12]string{"C", "C♯", "D", "D♯", "E", "F", "F♯", "G", "G♯", "A", "A♯", "B"}

// C0 returns the frequency of C in octave 0 for the given A4 pitch.
// A4 sits 4 octaves and 9 semitones above C0.
func C0(a4 float64) float64 {
	return a4 * math.Exp2(-5+1.0/4)
}

// frac maps x into [0,1) regardless of sign.
func frac(x float64) float64 {
	return math.Mod(math.Mod(x, 1)+1, 1)
}

// Recognize splits freq into octave, note number in [0,12) and cents in
// [-50,50) relative to the nearest equal-tempered note.
func Recognize(freq, a4 float64) (octave, noteNr int, cents float64) {
	semis := 12*math.Log2(freq/C0(a4)) + 0.5
	f := frac(semis)
	// n is derived from f rather than floor(semis) so both agree when
	// semis is a hair below an integer.
	n := math.Round(semis - f)
	cents = f*100 - 50
	octave = int(math.Floor(n / 12))
	noteNr = int(n) - 12*octave
	return octave, noteNr, cents
}

// Frequency is the inverse of Recognize. noteNr and cents may lie outside
// their canonical ranges; they are simply added on the semitone axis.
func Frequency(octave, noteNr int, cents, a4 float64) float64 {
	return C0(a4) * math.Exp2(float64(octave)+(float64(noteNr)+cents/100)/12)
}

// SnapHertz rounds freq to the nearest whole Hz.
func SnapHertz(freq float64) float64 {
	return math.Round(freq)
}

// Delta describes a move in musical coordinates. When ResetCents is set the
// result lands exactly on a note and Cents is ignored.
type Delta struct {
	Octaves    int
	Semitones  int
	Cents      float64
	ResetCents bool
}

// Snap moves freq by d while holding the other coordinates fixed.
func Snap(freq, a4 float64, d Delta) float64 {
	octave, noteNr, cents := Recognize(freq, a4)
	if d.ResetCents {
		cents = 0
	} else {
		cents += d.Cents
	}
	return Frequency(octave+d.Octaves, noteNr+d.Semitones, cents, a4)
}

// FromMIDI returns the frequency of a MIDI note number (69 = A4).
func FromMIDI(n uint8, a4 float64) float64 {
	return a4 * math.Exp2((float64(n)-69)/12)
}

// ToMIDI returns the nearest MIDI note number for freq, clamped to 0..127.
func ToMIDI(freq, a4 float64) uint8 {
	n := math.Round(69 + 12*math.Log2(freq/a4))
	return uint8(math.Min(math.Max(n, 0), 127))
}

// Label is a formatted note reading.
type Label struct {
	Name   string
	Octave int
	Cents  float64 // rounded to 0.1
}

// Name recognises freq and rounds its cents for display.
func Name(freq, a4 float64) Label {
	octave, noteNr, cents := Recognize(freq, a4)
	cents = math.Round(cents*10) / 10
	if cents == 0 {
		cents = 0 // drop negative zero
	}
	return Label{Name: Names[noteNr], Octave: octave, Cents: cents}
}

func (l Label) centsString() string {
	s := strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", l.Cents), "0"), ".")
	if l.Cents > 0 {
		s = "+" + s
	}
	return s + "c"
}

// String renders "A4" or "C3 +12c".
func (l Label) String() string {
	if l.Cents == 0 {
		return fmt.Sprintf("%s%d", l.Name, l.Octave)
	}
	return fmt.Sprintf("%s%d %s", l.Name, l.Octave, l.centsString())
}

// HTML renders "A4" or "C3<sup>+12c</sup>".
func (l Label) HTML() string {
	if l.Cents == 0 {
		return fmt.Sprintf("%s%d", l.Name, l.Octave)
	}
	return fmt.Sprintf("%s%d<sup>%s</sup>", l.Name, l.Octave, l.centsString())
}
