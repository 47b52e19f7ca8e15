package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-phasewheel/synth"
)

var (
	_ Looped    = (*Synthetic)(nil)
	_ Streaming = (*Live)(nil)
)

func TestSyntheticReadAcrossLoop(t *testing.T) {
	s, err := NewSynthetic(synth.Params{
		SampleRate: 1000,
		Length:     100,
		Center:     50,
		Radius:     10,
		Weights:    []float64{0, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 200, s.Len())
	assert.Equal(t, 1000.0, s.SampleRate())
	require.Len(t, s.Samples(), 300)

	// A window crossing the loop point reads into the tail, which repeats
	// the start of the loop.
	got := s.Read(190, 20)
	require.Len(t, got, 20)
	assert.Equal(t, s.Read(0, 10), got[10:])

	assert.Len(t, s.Read(290, 50), 10)
	assert.Nil(t, s.Read(300, 5))
	assert.Nil(t, s.Read(-1, 5))
}

func TestSyntheticReadCopies(t *testing.T) {
	s := NewLooped([]float64{1, 2, 3, 4}, 4, 10)
	got := s.Read(0, 2)
	got[0] = 99
	assert.Equal(t, 1.0, s.Read(0, 1)[0])
}

func TestLive(t *testing.T) {
	l := NewLive(48000, 8, 4)
	start, count := l.Latest()
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, count)

	l.Write([]float32{1, 2, 3})
	start, count = l.Latest()
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, count)
	assert.Equal(t, []float64{1, 2, 3}, l.Read(start, count))

	l.Write([]float32{4, 5, 6, 7, 8, 9, 10})
	start, count = l.Latest()
	assert.Equal(t, 6, start)
	assert.Equal(t, 4, count)
	assert.Equal(t, []float64{7, 8, 9, 10}, l.Read(start, count))

	// Samples overwritten by the ring are gone.
	assert.Equal(t, []float64{3, 4, 5}, l.Read(0, 5))
	assert.Nil(t, l.Read(10, 4))
}

func TestLoadWAV(t *testing.T) {
	samples := []float64{0, 0.5, -0.5, 0.25}
	path := filepath.Join(t.TempDir(), "loop.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, synth.WriteWAV(f, samples, 22050))
	require.NoError(t, f.Close())

	s, err := LoadWAV(path)
	require.NoError(t, err)
	assert.Equal(t, 22050.0, s.SampleRate())
	assert.Equal(t, 4, s.Len())
	require.Len(t, s.Samples(), 6)
	assert.InDeltaSlice(t, samples, s.Read(0, 4), 1e-4)
	assert.Equal(t, s.Samples()[:2], s.Samples()[4:])
}

func TestLoadWAVMissing(t *testing.T) {
	_, err := LoadWAV(filepath.Join(t.TempDir(), "nope.wav"))
	assert.Error(t, err)
}
