package midi

// Controller is a MIDI input the app listens to
type Controller interface {
	ID() string

	// Note-on events with non-zero velocity
	NoteEvents() <-chan NoteEvent

	// Lifecycle
	Close() error
}
