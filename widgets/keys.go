package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-phasewheel/theme"
)

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

// RenderKeyHelp lays the sections out side by side with keys in the
// accent colour
func RenderKeyHelp(sections []KeySection, th *theme.Theme) string {
	keyStyle := lipgloss.NewStyle().Foreground(th.Accent())
	titleStyle := lipgloss.NewStyle().Foreground(th.FG())

	cols := make([]string, 0, len(sections))
	for i, sec := range sections {
		width := 0
		for _, k := range sec.Keys {
			width = max(width, lipgloss.Width(k.Key))
		}

		var lines []string
		if sec.Title != "" {
			lines = append(lines, titleStyle.Render(sec.Title))
		}
		for _, k := range sec.Keys {
			pad := strings.Repeat(" ", width-lipgloss.Width(k.Key))
			lines = append(lines, keyStyle.Render(k.Key)+pad+"  "+k.Desc)
		}

		col := strings.Join(lines, "\n")
		if i < len(sections)-1 {
			col = lipgloss.NewStyle().PaddingRight(4).Render(col)
		}
		cols = append(cols, col)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}
