package theme

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gpl = `GIMP Palette
Name: Test
Columns: 2
# comment
0 0 0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, "Test", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"))
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{255, 255, 255}, p.Lookup(2))

	mid := p.Lookup(0.5)
	assert.InDelta(t, mid[0], mid[1], 1)
	assert.InDelta(t, mid[1], mid[2], 1)
	assert.Greater(t, mid[0], uint8(50))
	assert.Less(t, mid[0], uint8(200))
}

func TestOpacity(t *testing.T) {
	th := New(nil)
	assert.Equal(t, th.BG(), th.Opacity(0))
	assert.Equal(t, lipgloss.Color(th.Palette.Lookup(1).Hex()), th.Opacity(1))
	assert.Equal(t, th.Opacity(1), th.Opacity(5))
	assert.Equal(t, "#0d0887", string(th.BG()))
}
