// Package capture opens the default input device and feeds it into a
// live source.
package capture

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"go-phasewheel/debug"
	"go-phasewheel/source"
)

// Options for the input stream. Zero values fall back to defaults.
type Options struct {
	SampleRate      float64
	FramesPerBuffer int
	Window          int
	Seconds         float64 // ring buffer length
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = 48000
	}
	if o.FramesPerBuffer <= 0 {
		o.FramesPerBuffer = 512
	}
	if o.Window <= 0 {
		o.Window = source.DefaultWindow
	}
	if o.Seconds <= 0 {
		o.Seconds = 2
	}
	return o
}

// Stream is an open capture stream.
type Stream struct {
	live   *source.Live
	stream *portaudio.Stream

	once sync.Once
}

// Open initialises portaudio and starts a mono input stream. On error
// nothing is left open.
func Open(opts Options) (*Stream, error) {
	opts = opts.withDefaults()
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}

	live := source.NewLive(opts.SampleRate, int(opts.Seconds*opts.SampleRate), opts.Window)
	stream, err := portaudio.OpenDefaultStream(1, 0, opts.SampleRate, opts.FramesPerBuffer, func(in []float32) {
		live.Write(in)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open input: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start input: %w", err)
	}

	debug.Log("capture", "input open at %.0f Hz, %d frames/buffer", opts.SampleRate, opts.FramesPerBuffer)
	return &Stream{live: live, stream: stream}, nil
}

// Detached wraps live in a Stream with no input device. Whoever holds live
// feeds it; Close only marks the stream closed.
func Detached(live *source.Live) *Stream {
	return &Stream{live: live}
}

// Source returns the live buffer the stream writes into.
func (s *Stream) Source() *source.Live {
	return s.live
}

// Close stops the stream and releases portaudio. Safe to call twice.
func (s *Stream) Close() error {
	var err error
	s.once.Do(func() {
		if s.stream == nil {
			return
		}
		if serr := s.stream.Stop(); serr != nil {
			err = serr
		}
		if cerr := s.stream.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if terr := portaudio.Terminate(); terr != nil && err == nil {
			err = terr
		}
		debug.Log("capture", "input closed")
	})
	return err
}
