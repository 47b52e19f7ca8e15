package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-phasewheel/phase"
)

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFilePartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rings": 5, "mapper": {"mode": "power", "octaveDoubling": false}}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Rings)
	assert.Equal(t, phase.Power, cfg.MapperMode())
	assert.False(t, cfg.Mapper.OctaveDoubling)
	assert.Equal(t, 440.0, cfg.A4)
	assert.Equal(t, 220.0, cfg.Signal.FundamentalHz)
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{rings`), 0644))
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Rings = 7
	require.NoError(t, cfg.SaveFile(path))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Rings)
}

func TestDerived(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rings = 12
	cfg.Mapper.Mode = "bogus"
	cfg.Signal.Harmonics = []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}

	assert.Equal(t, 10, cfg.WheelConfig().Rings)
	assert.Equal(t, phase.Threshold, cfg.MapperMode())

	p := cfg.SynthParams()
	assert.Len(t, p.Weights, 7)
	assert.Equal(t, 480000, p.Length)
	start, stop := p.Band()
	assert.Equal(t, 200.0, start)
	assert.Equal(t, 240.0, stop)
}
