package charts

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Palette is the colour cycle shared by every chart
var Palette = mustPalette(
	"#004c6d", "#ff6b35", "#7aa874", "#ee4266", "#3a506b",
	"#f4a261", "#ffb703", "#8d99ae", "#e63946", "#06d6a0",
)

// Figure sizes
var (
	wideSize  = size{W: 10 * vg.Inch, H: 6 * vg.Inch}
	largeSize = size{W: 12 * vg.Inch, H: 8 * vg.Inch}
)

var (
	titleSize = vg.Points(14)
	labelSize = vg.Points(12)
	gridDash  = []vg.Length{vg.Points(4), vg.Points(3)}
)

type size struct {
	W, H vg.Length
}

// PaletteColor returns the palette entry for i, cycling past the end
func PaletteColor(i int) color.Color {
	return Palette[i%len(Palette)]
}

// ParseHexColor parses "#rrggbb" into an opaque colour
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func mustPalette(hexes ...string) []color.Color {
	out := make([]color.Color, len(hexes))
	for i, h := range hexes {
		c, err := ParseHexColor(h)
		if err != nil {
			panic(err)
		}
		out[i] = c
	}
	return out
}

// newPlot creates a plot with a bold title and bold axis labels
func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()

	p.Title.Text = title
	p.Title.TextStyle.Font.Size = titleSize
	p.Title.TextStyle.Font.Weight = xfont.WeightBold
	p.Title.Padding = vg.Points(8)

	p.X.Label.Text = xLabel
	p.X.Label.TextStyle.Font.Size = labelSize
	p.X.Label.TextStyle.Font.Weight = xfont.WeightBold

	p.Y.Label.Text = yLabel
	p.Y.Label.TextStyle.Font.Size = labelSize
	p.Y.Label.TextStyle.Font.Weight = xfont.WeightBold

	return p
}

// dashedGrid returns a grid with dashed lines on the requested axes.
// vertical draws lines at the x ticks, horizontal at the y ticks.
func dashedGrid(vertical, horizontal bool) *plotter.Grid {
	g := plotter.NewGrid()
	g.Vertical.Dashes = gridDash
	g.Horizontal.Dashes = gridDash
	g.Vertical.Color = color.Gray{Y: 200}
	g.Horizontal.Color = color.Gray{Y: 200}
	if !vertical {
		g.Vertical.Color = nil
	}
	if !horizontal {
		g.Horizontal.Color = nil
	}
	return g
}

// categoryWidth sizes bars and boxes so n categories fill about 70% of span
func categoryWidth(n int, span vg.Length) vg.Length {
	if n < 1 {
		n = 1
	}
	w := span * 0.7 / vg.Length(n)
	if w > vg.Points(60) {
		w = vg.Points(60)
	}
	return w
}
