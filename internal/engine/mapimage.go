package engine

import (
	"image/color"
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"plantmap/internal/models"
)

// DrawMap renders a bubble map as a PNG on a plain lon/lat canvas.
func DrawMap(w io.Writer, m *models.BubbleMap, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = "Oil & Gas Power Plants"
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	// One series per status keeps legend entries aligned with marker colors.
	for _, entry := range m.Legend {
		var (
			xys   plotter.XYs
			radii []vg.Length
		)
		for _, mk := range m.Markers {
			if mk.Status != entry.Status {
				continue
			}
			xys = append(xys, plotter.XY{X: mk.Lon, Y: mk.Lat})
			radii = append(radii, vg.Points(mk.Diameter/2))
		}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return eris.Wrapf(err, "map: scatter for status %q", entry.Status)
		}
		c := parseHexColor(entry.Color)
		s.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: c, Radius: radii[i], Shape: draw.CircleGlyph{}}
		}

		p.Add(s)
		p.Legend.Add(entry.Status, s)
	}

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return eris.Wrap(err, "map: create png writer")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return eris.Wrap(err, "map: write png")
	}
	return nil
}

// parseHexColor converts "#RRGGBB" to a translucent RGBA.
func parseHexColor(hex string) color.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{A: 160}
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return color.RGBA{A: 160}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 160}
}
