package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-phasewheel/theme"
	"go-phasewheel/wheel"
)

// Wheel draws the quant rings as a disc of terminal cells. Ring 0, the
// finest, is the outermost. Ring k repeats its quants 2^k times around the disc, so every
// quant on every ring spans the same angle.
type Wheel struct {
	Width, Height int // cells; terminal cells are about twice as tall as wide

	tree   *wheel.Tree
	values [][]float64
}

func NewWheel(width, height int) *Wheel {
	return &Wheel{Width: width, Height: height}
}

// Rebuild implements wheel.Renderer
func (w *Wheel) Rebuild(t *wheel.Tree) {
	w.tree = t
	w.values = make([][]float64, t.Rings())
	for ring := range w.values {
		w.values[ring] = make([]float64, len(t.Handles[ring]))
	}
}

// ApplyOpacity implements wheel.Renderer. Stale handles are ignored.
func (w *Wheel) ApplyOpacity(h wheel.Handle, opacity float64) {
	if w.tree == nil || !w.tree.Valid(h) {
		return
	}
	w.values[h.Ring][h.Quant] = opacity
}

// Value returns the stored opacity of one quant
func (w *Wheel) Value(ring, quant int) float64 {
	return w.values[ring][quant]
}

// Locate maps a cell to the ring and quant drawn there
func (w *Wheel) Locate(x, y int) (ring, quant int, ok bool) {
	if w.tree == nil || w.Width < 1 || w.Height < 1 {
		return 0, 0, false
	}
	dx := (float64(x) + 0.5 - float64(w.Width)/2) / (float64(w.Width) / 2)
	dy := (float64(y) + 0.5 - float64(w.Height)/2) / (float64(w.Height) / 2)
	r := math.Hypot(dx, dy)
	if r >= 1 {
		return 0, 0, false
	}
	rings := w.tree.Rings()
	ring = rings - 1 - int(r*float64(rings))

	// Angle measured clockwise from 3 o'clock, as on screen.
	theta := math.Atan2(dy, dx)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	repeats := float64(int(1) << ring)
	pos := math.Mod(theta/(2*math.Pi)*repeats, 1)
	n := len(w.tree.Handles[ring])
	quant = min(int(pos*float64(n)), n-1)
	return ring, quant, true
}

// View renders the disc. Each ring is scaled by its own peak so coarse and
// fine rings stay comparable.
func (w *Wheel) View(th *theme.Theme) string {
	peaks := make([]float64, len(w.values))
	for ring, vals := range w.values {
		for _, v := range vals {
			peaks[ring] = math.Max(peaks[ring], v)
		}
	}

	quant := string(th.Symbols.Quant)
	var out strings.Builder
	for y := 0; y < w.Height; y++ {
		if y > 0 {
			out.WriteString("\n")
		}
		for x := 0; x < w.Width; x++ {
			ring, q, ok := w.Locate(x, y)
			if !ok {
				out.WriteString(" ")
				continue
			}
			level := 0.0
			if peaks[ring] > 0 {
				level = w.values[ring][q] / peaks[ring]
			}
			out.WriteString(lipgloss.NewStyle().Foreground(th.Opacity(level)).Render(quant))
		}
	}
	return out.String()
}
