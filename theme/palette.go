package theme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// Default is a plasma-like ramp used when no GPL file is configured
func Default() *Palette {
	return &Palette{
		Name: "plasma",
		Colors: []RGB{
			{13, 8, 135},
			{84, 2, 163},
			{139, 10, 165},
			{185, 50, 137},
			{219, 92, 104},
			{244, 136, 73},
			{254, 188, 43},
			{240, 249, 33},
		},
	}
}

func LoadGPL(path string) (*Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseGPL(f)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	return p, nil
}

// ParseGPL reads a GIMP palette
func ParseGPL(r io.Reader) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// Parse RGB values (first 3 fields are R G B)
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(p.Colors) == 0 {
		return nil, fmt.Errorf("no colors found")
	}

	return p, nil
}

// Lookup returns the palette colour for a normalized value 0-1, blended in
// Lab space between neighbouring entries
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	// Find the two colors to interpolate between
	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i].colorful()
	c1 := p.Colors[i+1].colorful()
	return fromColorful(c0.BlendLab(c1, frac))
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c[0]) / 255, G: float64(c[1]) / 255, B: float64(c[2]) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{r, g, b}
}

// Hex returns "#rrggbb"
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
