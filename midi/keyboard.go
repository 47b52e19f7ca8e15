package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController handles a standard MIDI keyboard
type KeyboardController struct {
	id       string
	stopFunc func()

	noteChan chan NoteEvent
}

func newKeyboard(id string) *KeyboardController {
	return &KeyboardController{
		id:       id,
		noteChan: make(chan NoteEvent, 32),
	}
}

// NewKeyboardController opens inPort and listens for note-on messages
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := newKeyboard(id)
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		kb.handle(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("open input %s: %w", id, err)
	}
	kb.stopFunc = stop
	return kb, nil
}

// handle drops events when nobody is reading
func (kb *KeyboardController) handle(msg gomidi.Message) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return
	}
	select {
	case kb.noteChan <- NoteEvent{Port: kb.id, Note: key, Velocity: velocity, Channel: channel}:
	default:
	}
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}
	close(kb.noteChan)
	return nil
}
