package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-phasewheel/theme"
)

// TraceStart is the first index at or above 0.99, or 0 when the trace
// never gets there. Aligning on it keeps the plot from scrolling.
func TraceStart(samples []float64) int {
	for i, v := range samples {
		if v >= 0.99 {
			return i
		}
	}
	return 0
}

// Trace plots peak-normalised samples, one per column, starting at the
// first peak
func Trace(samples []float64, width, height int, th *theme.Theme) string {
	if width < 1 || height < 1 {
		return ""
	}
	grid := make([][]rune, height)
	mid := (height - 1) / 2
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", width))
		if y == mid {
			grid[y] = []rune(strings.Repeat(string(th.Symbols.Axis), width))
		}
	}

	samples = samples[TraceStart(samples):]
	for x := 0; x < width && x < len(samples); x++ {
		v := math.Max(-1, math.Min(1, samples[x]))
		y := int(math.Round((1 - v) / 2 * float64(height-1)))
		grid[y][x] = th.Symbols.Trace
	}

	lines := make([]string, height)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return lipgloss.NewStyle().Foreground(th.FG()).Render(strings.Join(lines, "\n"))
}
