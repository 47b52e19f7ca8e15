package source

import "sync"

// DefaultWindow matches the analyser size of typical capture backends.
const DefaultWindow = 2048

// Live is a ring buffer filled by a capture callback and read by the frame
// loop. Indices are absolute sample counts since the stream opened.
type Live struct {
	mu     sync.Mutex
	rate   float64
	buf    []float64
	total  int
	window int
}

// NewLive keeps the last capacity samples and reports windows of window
// samples from Latest.
func NewLive(rate float64, capacity, window int) *Live {
	capacity = max(capacity, window)
	return &Live{rate: rate, buf: make([]float64, capacity), window: window}
}

func (l *Live) SampleRate() float64 { return l.rate }

// Write appends captured samples. Safe to call from the capture goroutine.
func (l *Live) Write(in []float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.buf)
	for _, v := range in {
		l.buf[l.total%n] = float64(v)
		l.total++
	}
}

// Latest returns the most recent window. count is 0 before any capture.
func (l *Live) Latest() (start, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count = min(l.total, l.window)
	return l.total - count, count
}

// Read copies the part of [start, start+count) still held by the buffer.
func (l *Live) Read(start, count int) []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.buf)
	lo := max(start, l.total-n, 0)
	hi := min(start+count, l.total)
	if hi <= lo {
		return nil
	}
	out := make([]float64, hi-lo)
	for i := range out {
		out[i] = l.buf[(lo+i)%n]
	}
	return out
}
