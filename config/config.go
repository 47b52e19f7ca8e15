package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go-phasewheel/phase"
	"go-phasewheel/synth"
	"go-phasewheel/wheel"
)

// SignalConfig describes the synthesized test signal
type SignalConfig struct {
	FundamentalHz float64   `json:"fundamentalHz"`
	RadiusHz      float64   `json:"radiusHz"`
	Harmonics     []float64 `json:"harmonics"` // index 0 is noise
	Seconds       float64   `json:"seconds"`   // length of one forward sweep
	SampleRate    float64   `json:"sampleRate"`
	Normalize     bool      `json:"normalize,omitempty"`
}

// MapperConfig selects how samples are binned
type MapperConfig struct {
	Mode           string  `json:"mode"` // "threshold" or "power"
	PowerExponent  float64 `json:"powerExponent,omitempty"`
	OctaveDoubling bool    `json:"octaveDoubling"`
}

// MIDIConfig controls keyboard input
type MIDIConfig struct {
	AutoConnect bool   `json:"autoConnect"`
	PortFilter  string `json:"portFilter,omitempty"` // substring match, empty = any input
}

// CaptureConfig controls live input
type CaptureConfig struct {
	FramesPerBuffer int `json:"framesPerBuffer,omitempty"`
	Window          int `json:"window,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Rings       int           `json:"rings"`
	A4          float64       `json:"a4"`
	ReferenceHz float64       `json:"referenceHz"`
	FPS         int           `json:"fps"`
	Palette     string        `json:"palette,omitempty"` // GPL file, empty = built in
	Signal      SignalConfig  `json:"signal"`
	Mapper      MapperConfig  `json:"mapper"`
	MIDI        MIDIConfig    `json:"midi"`
	Capture     CaptureConfig `json:"capture,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Rings:       3,
		A4:          440,
		ReferenceHz: 440,
		FPS:         60,
		Signal: SignalConfig{
			FundamentalHz: 220,
			RadiusHz:      20,
			Harmonics:     []float64{0, 1, 0.5, 0.33, 0.25, 0.2, 0.16},
			Seconds:       10,
			SampleRate:    48000,
		},
		Mapper: MapperConfig{
			Mode:           phase.Threshold.String(),
			PowerExponent:  phase.DefaultPower,
			OctaveDoubling: true,
		},
		MIDI: MIDIConfig{
			AutoConnect: true,
		},
		Capture: CaptureConfig{
			FramesPerBuffer: 512,
			Window:          2048,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-phasewheel"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path. Missing keys keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path, creating its directory
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// WheelConfig returns the clamped ring layout
func (c *Config) WheelConfig() wheel.Config {
	return wheel.NewConfig(c.Rings)
}

// MapperMode parses the mapper mode, falling back to threshold
func (c *Config) MapperMode() phase.Mode {
	m, _ := phase.ParseMode(c.Mapper.Mode)
	return m
}

// SynthParams converts the signal section for the synthesizer. Extra
// harmonic weights are dropped.
func (c *Config) SynthParams() synth.Params {
	s := c.Signal
	weights := s.Harmonics
	if len(weights) > synth.Harmonics {
		weights = weights[:synth.Harmonics]
	}
	return synth.Params{
		SampleRate: s.SampleRate,
		Length:     int(s.Seconds * s.SampleRate),
		Center:     s.FundamentalHz,
		Radius:     s.RadiusHz,
		Weights:    append([]float64(nil), weights...),
		Normalize:  s.Normalize,
	}
}
