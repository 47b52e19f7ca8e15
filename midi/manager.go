// Package midi connects MIDI keyboards. A pressed key sets the reference
// frequency to that key's pitch.
package midi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-phasewheel/debug"
)

var ErrTimeout = errors.New("midi: listing ports timed out")

// DeviceEvent is emitted when keyboards connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// DeviceManager handles hot-plug detection of MIDI keyboards and merges
// their notes into one channel
type DeviceManager struct {
	filter      string
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	notes       chan NoteEvent
	pollRate    time.Duration
}

// NewDeviceManager watches input ports whose name contains filter
// (case-insensitive). An empty filter takes every input except the
// loopback "through" ports.
func NewDeviceManager(filter string) *DeviceManager {
	return &DeviceManager{
		filter:      strings.ToLower(filter),
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		notes:       make(chan NoteEvent, 32),
		pollRate:    time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Notes returns note-on events from every connected keyboard
func (dm *DeviceManager) Notes() <-chan NoteEvent {
	return dm.notes
}

// Controllers returns a snapshot of connected keyboards
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// InputPorts lists the names of all MIDI inputs
func InputPorts() ([]string, error) {
	ins, err := inPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.String()
	}
	return names, nil
}

// inPorts lists inputs with a timeout (CoreMIDI can hang)
func inPorts() ([]drivers.In, error) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()
	select {
	case ins := <-ch:
		return ins, nil
	case <-time.After(3 * time.Second):
		return nil, ErrTimeout
	}
}

func (dm *DeviceManager) scan() {
	ins, err := inPorts()
	if err != nil {
		debug.Log("midi", "scan: %v", err)
		return
	}

	seenIDs := make(map[string]bool)
	for _, in := range ins {
		id := in.String()
		if !matches(id, dm.filter) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		kb, err := NewKeyboardController(id, in)
		if err != nil {
			debug.Log("midi", "%v", err)
			continue
		}
		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()
		go dm.forward(kb)

		debug.Log("midi", "connected %s", id)
		dm.events <- DeviceEvent{Type: DeviceConnected, ID: id}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

// forward copies notes until the keyboard is closed
func (dm *DeviceManager) forward(c Controller) {
	for ev := range c.NoteEvents() {
		select {
		case dm.notes <- ev:
		default:
		}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func matches(name, filter string) bool {
	name = strings.ToLower(name)
	if filter == "" {
		return !strings.Contains(name, "through")
	}
	return strings.Contains(name, filter)
}
