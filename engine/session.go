package engine

import (
	"fmt"

	"go-phasewheel/debug"
	"go-phasewheel/phase"
	"go-phasewheel/source"
	"go-phasewheel/synth"
	"go-phasewheel/tuning"
	"go-phasewheel/wheel"
)

// SourceKind says where the session's samples come from.
type SourceKind int

const (
	SourceSynthetic SourceKind = iota
	SourceFile
	SourceLive
)

func (k SourceKind) String() string {
	switch k {
	case SourceSynthetic:
		return "synth"
	case SourceFile:
		return "file"
	case SourceLive:
		return "live"
	}
	return "?"
}

// Settings are read when the user applies the form, not continuously.
type Settings struct {
	Rings    int
	Synth    synth.Params
	Mode     phase.Mode
	Power    float64
	Doubling bool
}

// Session is the explicit context every frame works against: the wheel,
// the tuning reference, the mapper and the current sample source.
type Session struct {
	Wheel  *wheel.Model
	Tuning *tuning.State
	Mapper *phase.Mapper

	settings Settings
	src      source.Source
	kind     SourceKind
	synthSrc *source.Synthetic
	built    synth.Params // what synthSrc was generated from
}

// NewSession builds the wheel and the synthetic source for s.
func NewSession(r wheel.Renderer, t *tuning.State, s Settings) (*Session, error) {
	sess := &Session{
		Wheel:  wheel.NewModel(r),
		Tuning: t,
	}
	if err := sess.Apply(s); err != nil {
		return nil, err
	}
	return sess, nil
}

// Settings returns the last applied settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// Apply rebuilds the wheel when the ring count changed and regenerates the
// synthetic signal when its parameters changed, even while a file is
// playing. During live capture regeneration waits for UseSynthetic.
func (s *Session) Apply(set Settings) error {
	cfg := wheel.NewConfig(set.Rings)
	set.Rings = cfg.Rings
	if s.Wheel.Configure(cfg) {
		debug.Log("session", "rings=%d quantRate=%d", cfg.Rings, cfg.QuantRate())
	}

	if s.Mapper == nil {
		s.Mapper = phase.NewMapper(cfg.QuantRate(), set.Mode)
	}
	s.Mapper.QuantRate = cfg.QuantRate()
	s.Mapper.Mode = set.Mode
	s.Mapper.Doubling = set.Doubling
	if set.Power > 0 {
		s.Mapper.Power = set.Power
	}

	s.settings = set
	if s.kind == SourceLive && s.src != nil {
		// Regenerated on the way back by UseSynthetic.
		return nil
	}
	return s.syncSynth()
}

// syncSynth regenerates the signal when the applied parameters differ from
// the ones it was built from.
func (s *Session) syncSynth() error {
	set := s.settings.Synth
	if s.synthSrc != nil && sameSynth(s.built, set) {
		return nil
	}
	syn, err := source.NewSynthetic(set)
	if err != nil {
		return fmt.Errorf("generate signal: %w", err)
	}
	start, stop := set.Band()
	debug.Log("session", "synth %.1f-%.1f Hz, %d samples", start, stop, len(syn.Samples()))
	s.synthSrc = syn
	s.built = set
	s.built.Weights = append([]float64(nil), set.Weights...)
	if s.src == nil || s.kind == SourceSynthetic {
		s.src = syn
		s.kind = SourceSynthetic
	}
	return nil
}

func sameSynth(a, b synth.Params) bool {
	if a.SampleRate != b.SampleRate || a.Length != b.Length || a.Center != b.Center ||
		a.Radius != b.Radius || a.Normalize != b.Normalize || len(a.Weights) != len(b.Weights) {
		return false
	}
	for i := range a.Weights {
		if a.Weights[i] != b.Weights[i] {
			return false
		}
	}
	// The noise harmonic is never reproducible.
	return len(a.Weights) == 0 || a.Weights[0] == 0
}

// Source returns the active source. Callers re-read it every frame.
func (s *Session) Source() source.Source {
	return s.src
}

// Kind returns the kind of the active source.
func (s *Session) Kind() SourceKind {
	return s.kind
}

// Synthetic returns the generated source even while another is active.
func (s *Session) Synthetic() *source.Synthetic {
	return s.synthSrc
}

// SetSource swaps in a file or live source. It takes effect on the next frame.
func (s *Session) SetSource(src source.Source, kind SourceKind) {
	s.src = src
	s.kind = kind
	debug.Log("session", "source=%s rate=%.0f", kind, src.SampleRate())
}

// UseSynthetic switches back to the generated signal, regenerating it
// if settings were applied while it was not in use.
func (s *Session) UseSynthetic() error {
	s.src = s.synthSrc
	s.kind = SourceSynthetic
	debug.Log("session", "source=synth")
	return s.syncSynth()
}
