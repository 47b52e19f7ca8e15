package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-phasewheel/theme"
	"go-phasewheel/wheel"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func configured(t *testing.T, rings int) (*Wheel, *wheel.Model) {
	t.Helper()
	w := NewWheel(40, 20)
	m := wheel.NewModel(w)
	require.True(t, m.Configure(wheel.NewConfig(rings)))
	return w, m
}

func TestWheelReceivesOpacities(t *testing.T) {
	w, m := configured(t, 3)
	require.NoError(t, m.SetSingle(300))
	assert.Equal(t, 1.0, w.Value(0, 300))
	assert.Equal(t, 1.0, w.Value(1, 100))
	assert.Equal(t, 1.0, w.Value(2, 0))
	assert.Zero(t, w.Value(0, 0))
}

func TestWheelIgnoresStaleHandles(t *testing.T) {
	w, m := configured(t, 3)
	stale := m.Tree().Handles[0][5]
	m.Configure(wheel.NewConfig(4))
	w.ApplyOpacity(stale, 1)
	assert.Zero(t, w.Value(0, 5))
}

func TestLocate(t *testing.T) {
	w, _ := configured(t, 3)

	_, _, ok := w.Locate(0, 0)
	assert.False(t, ok, "corner is outside the disc")

	ring, _, ok := w.Locate(20, 10)
	require.True(t, ok)
	assert.Equal(t, 2, ring, "centre is the coarsest ring")

	// Right edge, level with the centre: outermost ring, angle near zero.
	ring, quant, ok := w.Locate(39, 9)
	require.True(t, ok)
	assert.Equal(t, 0, ring)
	assert.Greater(t, quant, 390, "just above 3 o'clock wraps to the end of the ring")

	ring, quant, ok = w.Locate(39, 10)
	require.True(t, ok)
	assert.Equal(t, 0, ring)
	assert.Less(t, quant, 10)
}

func TestWheelView(t *testing.T) {
	w, m := configured(t, 3)
	require.NoError(t, m.SetSingle(0))
	lines := strings.Split(w.View(theme.New(nil)), "\n")
	require.Len(t, lines, 20)
	for _, l := range lines {
		assert.Equal(t, 40, lipgloss.Width(l))
	}
	assert.Contains(t, lines[10], "█")
}

func TestTrace(t *testing.T) {
	assert.Equal(t, 2, TraceStart([]float64{0, 0.5, 1, 0.2}))
	assert.Equal(t, 0, TraceStart([]float64{0.1, 0.2}))

	out := Trace([]float64{0, 1, 0, -1, 0}, 4, 3, theme.New(nil))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "•   ", lines[0])
	assert.Equal(t, "─•─•", lines[1])
	assert.Equal(t, "  • ", lines[2])
	assert.Empty(t, Trace(nil, 0, 3, theme.New(nil)))
}

func TestRenderKeyHelp(t *testing.T) {
	th := theme.New(nil)
	out := RenderKeyHelp([]KeySection{{
		Title: "Tuning",
		Keys: []KeyBinding{
			{Key: "←/→", Desc: "-/+ 0.01 Hz"},
			{Key: "o", Desc: "octave down"},
		},
	}}, th)
	assert.Equal(t, "Tuning\n←/→  -/+ 0.01 Hz\no    octave down", out)

	out = RenderKeyHelp([]KeySection{
		{Title: "A", Keys: []KeyBinding{{Key: "x", Desc: "one"}}},
		{Title: "B", Keys: []KeyBinding{{Key: "y", Desc: "two"}}},
	}, th)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "A"))
	assert.Contains(t, lines[0], "B")
	assert.Contains(t, lines[1], "x  one")
	assert.Contains(t, lines[1], "y  two")
}
