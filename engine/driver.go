// Package engine runs the per-frame loop: pull a slice of samples, map it
// to phase quants and publish ring opacities.
package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go-phasewheel/debug"
	"go-phasewheel/phase"
	"go-phasewheel/source"
)

// State of the driver.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUN"
	}
	return "IDLE"
}

// Stats describes the last processed frame.
type Stats struct {
	Frames   int
	FPS      float64
	Elapsed  time.Duration
	Start    int     // absolute index of the first sample in the window
	Count    int     // samples in the window
	Playback float64 // position in the palindromic loop, 0..1..0
	Err      error   // non-fatal anomaly of the last frame
}

// Driver is the frame state machine. Frames arriving while Idle are no-ops.
type Driver struct {
	session *Session

	mu      sync.Mutex
	state   State
	started bool
	start   time.Duration
	prev    time.Duration
	stats   Stats
	trace   []float64

	updates chan struct{}
}

// NewDriver creates an idle driver and shows the idle pose.
func NewDriver(s *Session) *Driver {
	d := &Driver{
		session: s,
		updates: make(chan struct{}, 1),
	}
	d.idlePose()
	return d
}

// Session returns the session the driver works on.
func (d *Driver) Session() *Session {
	return d.session
}

// Updates receives a signal after every frame that published opacities.
func (d *Driver) Updates() <-chan struct{} {
	return d.updates
}

// idlePose points the wheel three quarters round, as on a fresh page.
func (d *Driver) idlePose() {
	if t := d.session.Wheel.Tree(); t != nil {
		d.session.Wheel.SetSingle(3 * t.Config.QuantRate() / 4)
	}
}

// Start moves Idle to Running. The next frame only sets the time baseline.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Running {
		return
	}
	d.state = Running
	d.started = false
	debug.Log("driver", "start")
}

// Stop moves Running to Idle. Frames already scheduled become no-ops.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Idle {
		return
	}
	d.state = Idle
	d.started = false
	debug.Log("driver", "stop after %d frames", d.stats.Frames)
}

// State returns the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Stats returns a copy of the last frame's stats.
func (d *Driver) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Trace returns the peak-normalised samples of the last frame.
func (d *Driver) Trace() []float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trace
}

// WithSession runs fn between frames. Use it to retune or swap sources
// while Run is ticking on another goroutine.
func (d *Driver) WithSession(fn func(s *Session)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.session)
}

// Apply applies settings and restores the idle pose when not running.
func (d *Driver) Apply(set Settings) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.session.Apply(set); err != nil {
		return err
	}
	if d.state == Idle {
		d.idlePose()
	}
	return nil
}

// window picks the samples covering (prev, now] of a looped source.
func (d *Driver) window(src source.Looped, now time.Duration, rate float64) (start, count int, playback float64) {
	n := src.Len()
	if n <= 0 {
		return 0, 0, 0
	}
	start = int(math.Floor((d.prev - d.start).Seconds()*rate)) % n
	stop := int(math.Floor((now - d.start).Seconds()*rate)) % n
	playback = 1 - math.Abs(math.Mod(float64(stop)/float64(n)*2, 2)-1)
	if stop < start {
		stop += n
	}
	return start, min(stop-start, n/2), playback
}

// Frame processes one display frame at timestamp now. It reports whether
// opacities were published.
func (d *Driver) Frame(now time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Running {
		return false
	}
	if !d.started {
		d.started = true
		d.start, d.prev = now, now
		return false
	}
	if now <= d.prev {
		return false
	}

	st := Stats{
		Frames:  d.stats.Frames + 1,
		FPS:     float64(time.Second) / float64(now-d.prev),
		Elapsed: now - d.start,
	}

	src := d.session.Source()
	rate := src.SampleRate()
	switch s := src.(type) {
	case source.Streaming:
		st.Start, st.Count = s.Latest()
	case source.Looped:
		st.Start, st.Count, st.Playback = d.window(s, now, rate)
	}
	d.prev = now

	slice := src.Read(st.Start, st.Count)
	d.trace = d.session.Mapper.Normalize(slice)
	dist, err := d.session.Mapper.MapNormalized(d.trace, st.Start, rate, d.session.Tuning.Freq())
	published := false
	switch {
	case errors.Is(err, phase.ErrShortSlice):
		st.Err = err
	default:
		if rerr := d.session.Wheel.Render(dist); rerr != nil {
			err = errors.Join(err, rerr)
		}
		st.Err = err
		published = true
	}
	if st.Err != nil {
		debug.LogEvery(60, "driver", "frame %d: %v", st.Frames, st.Err)
	}
	d.stats = st
	return published
}

// Run is the scheduler loop: one Frame per tick until ctx is done. Idle
// ticks cost nothing, so Start and Stop can be called while it runs.
func (d *Driver) Run(ctx context.Context, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(max(fps, 1)))
	defer ticker.Stop()

	origin := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if d.Frame(t.Sub(origin)) {
				select {
				case d.updates <- struct{}{}:
				default:
				}
			}
		}
	}
}
