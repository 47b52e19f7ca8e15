// Package playback plays the looped source through the default audio
// output so the signal can be heard while it is analysed.
package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"go-phasewheel/debug"
	"go-phasewheel/source"
)

var ErrNoSamples = errors.New("playback: source is empty")

// Loop streams a looped source from a given offset, forever.
type Loop struct {
	src  source.Looped
	pos  int
	gain float64
}

// NewLoop starts at offset, taken modulo the source period.
func NewLoop(src source.Looped, offset int, gain float64) (*Loop, error) {
	n := src.Len()
	if n <= 0 {
		return nil, ErrNoSamples
	}
	return &Loop{src: src, pos: ((offset % n) + n) % n, gain: gain}, nil
}

// Pos is the index of the next sample to be played.
func (l *Loop) Pos() int {
	return l.pos
}

// Stream implements beep.Streamer. Mono samples go to both channels.
func (l *Loop) Stream(samples [][2]float64) (n int, ok bool) {
	period := l.src.Len()
	for n < len(samples) {
		chunk := l.src.Read(l.pos, min(len(samples)-n, period-l.pos))
		if len(chunk) == 0 {
			break
		}
		for _, v := range chunk {
			samples[n][0] = v * l.gain
			samples[n][1] = v * l.gain
			n++
		}
		l.pos = (l.pos + len(chunk)) % period
	}
	return n, n > 0
}

// Err implements beep.Streamer.
func (l *Loop) Err() error {
	return nil
}

// DefaultRate is the speaker's output rate. Sources at other rates are
// resampled.
const DefaultRate = beep.SampleRate(48000)

var ErrClosed = errors.New("playback: speaker closed")

// Player owns the speaker. The speaker can only be initialised once per
// process, so it is opened lazily at a fixed rate and never reopened.
type Player struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	open    bool
	closed  bool
	playing bool
	gain    float64
}

// NewPlayer plays at rate, DefaultRate when zero
func NewPlayer(gain float64, rate beep.SampleRate) *Player {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Player{gain: gain, rate: rate}
}

// Rate is the speaker's output rate.
func (p *Player) Rate() beep.SampleRate {
	return p.rate
}

// streamer loops src from offset at the speaker rate
func (p *Player) streamer(src source.Looped, offset int) (beep.Streamer, error) {
	loop, err := NewLoop(src, offset, p.gain)
	if err != nil {
		return nil, err
	}
	sr := beep.SampleRate(int(src.SampleRate()))
	if sr == p.rate {
		return loop, nil
	}
	return beep.Resample(4, sr, p.rate, loop), nil
}

// Play replaces whatever is playing with src starting at offset.
func (p *Player) Play(src source.Looped, offset int) error {
	s, err := p.streamer(src, offset)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	if !p.open {
		if err := speaker.Init(p.rate, p.rate.N(time.Second/10)); err != nil {
			return fmt.Errorf("init speaker: %w", err)
		}
		p.open = true
	}
	speaker.Clear()
	speaker.Play(s)
	p.playing = true
	debug.Log("playback", "play %.0f Hz source at %d Hz from %d", src.SampleRate(), int(p.rate), offset)
	return nil
}

// Stop silences the speaker but keeps it open.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.closed {
		return
	}
	speaker.Clear()
	p.playing = false
	debug.Log("playback", "stop")
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close releases the audio device.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open || p.closed {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.closed = true
	p.playing = false
}
