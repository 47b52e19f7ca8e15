package midi

import "go-phasewheel/note"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// NoteEvent is sent when a key is pressed on a keyboard
type NoteEvent struct {
	Port     string
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// Frequency is the equal-tempered pitch of the key
func (e NoteEvent) Frequency(a4 float64) float64 {
	return note.FromMIDI(e.Note, a4)
}

// Label names the key, e.g. "A4"
func (e NoteEvent) Label(a4 float64) note.Label {
	return note.Name(e.Frequency(a4), a4)
}
