package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	Quant rune // █ lit quant cell
	Trace rune // • waveform point
	Axis  rune // ─ waveform zero line
}

func New(palette *Palette) *Theme {
	if palette == nil {
		palette = Default()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Quant: '█',
			Trace: '•',
			Axis:  '─',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // orange-red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Opacity fades the top palette colour into the background by opacity
// (0 = background, 1 = full colour)
func (t *Theme) Opacity(opacity float64) lipgloss.Color {
	switch {
	case opacity <= 0:
		return t.BG()
	case opacity >= 1:
		return t.Color(1)
	}
	bg := t.Palette.Lookup(RoleBG).colorful()
	fg := t.Palette.Lookup(opacity).colorful()
	return rgbToLipgloss(fromColorful(bg.BlendLab(fg, opacity)))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(c.Hex())
}
