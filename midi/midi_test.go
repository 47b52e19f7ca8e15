package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name, filter string
		want         bool
	}{
		{"Keystation 49 MIDI 1", "", true},
		{"Midi Through:Midi Through Port-0 14:0", "", false},
		{"Keystation 49 MIDI 1", "keystation", true},
		{"Launchpad X LPX MIDI", "keystation", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.name, tt.filter))
		})
	}
}

func TestKeyboardHandle(t *testing.T) {
	kb := newKeyboard("kb")

	kb.handle(gomidi.NoteOn(2, 69, 100))
	kb.handle(gomidi.NoteOn(2, 60, 0)) // running-status note off
	kb.handle(gomidi.NoteOff(2, 69))

	require.Len(t, kb.noteChan, 1)
	ev := <-kb.NoteEvents()
	assert.Equal(t, NoteEvent{Port: "kb", Note: 69, Velocity: 100, Channel: 2}, ev)
	assert.InDelta(t, 440, ev.Frequency(440), 1e-9)
	assert.Equal(t, "A4", ev.Label(440).String())

	require.NoError(t, kb.Close())
	_, ok := <-kb.NoteEvents()
	assert.False(t, ok)
}

func TestKeyboardDropsWhenFull(t *testing.T) {
	kb := newKeyboard("kb")
	for i := 0; i < 40; i++ {
		kb.handle(gomidi.NoteOn(0, 60, 1))
	}
	assert.Len(t, kb.noteChan, 32)
}

func TestForward(t *testing.T) {
	dm := NewDeviceManager("")
	kb := newKeyboard("kb")
	done := make(chan struct{})
	go func() {
		dm.forward(kb)
		close(done)
	}()
	kb.handle(gomidi.NoteOn(0, 57, 90))
	ev := <-dm.Notes()
	assert.Equal(t, uint8(57), ev.Note)
	kb.Close()
	<-done
}
