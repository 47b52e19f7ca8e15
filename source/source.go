// Package source provides the sample sources the frame loop reads from.
package source

import "errors"

var ErrEmpty = errors.New("source: no samples")

// Source is anything the frame loop can read amplitude samples from.
type Source interface {
	SampleRate() float64
	// Read copies count samples starting at absolute index start. Fewer
	// samples are returned when the range runs past the available data.
	Read(start, count int) []float64
}

// Looped is a fixed recording played in a loop. Len is the loop period;
// Read may be asked for up to half a period past Len so that a window
// crossing the loop point can be read contiguously.
type Looped interface {
	Source
	Len() int
}

// Streaming is a live buffer refreshed by a capture goroutine. Latest
// reports the absolute index and size of the most recent window.
type Streaming interface {
	Source
	Latest() (start, count int)
}
