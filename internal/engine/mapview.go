package engine

import (
	"math"
	"strconv"

	"github.com/twpayne/go-geom"

	"plantmap/internal/config"
	"plantmap/internal/models"
)

// NoMatchNotice is shown instead of a map when no unit can be plotted.
const NoMatchNotice = "No plants match the current filters."

// statusPalette is the qualitative marker palette, assigned to statuses in
// order of first appearance.
var statusPalette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// MapOptions tunes the bubble map.
type MapOptions struct {
	SizeMax float64
	Zoom    float64
	Height  int
	Style   string
}

// MapOptionsFrom converts the map configuration.
func MapOptionsFrom(cfg config.MapConfig) MapOptions {
	return MapOptions{SizeMax: cfg.SizeMax, Zoom: cfg.Zoom, Height: cfg.Height, Style: cfg.Style}
}

// Plottable reports whether a unit can be placed and sized on the map.
func Plottable(u *models.PlantUnit) bool {
	return u.Latitude != nil && u.Longitude != nil && u.Capacity != nil
}

// diameter scales a marker so its area is proportional to capacity.
// Non-positive capacities draw as zero-size markers.
func diameter(capacity, maxCap, sizeMax float64) float64 {
	if capacity <= 0 || maxCap <= 0 {
		return 0
	}
	return sizeMax * math.Sqrt(capacity/maxCap)
}

// RenderMap builds the bubble map for the plottable units of cs.
// It returns false when nothing can be plotted.
func RenderMap(cs *ColumnStore, opts MapOptions) (*models.BubbleMap, bool) {
	if opts.SizeMax <= 0 {
		opts.SizeMax = 40
	}

	var maxCap float64
	n := 0
	for i := range cs.Units {
		u := &cs.Units[i]
		if !Plottable(u) {
			continue
		}
		n++
		maxCap = math.Max(maxCap, *u.Capacity)
	}
	if n == 0 {
		return nil, false
	}

	m := &models.BubbleMap{
		Markers: make([]models.Marker, 0, n),
		Zoom:    opts.Zoom,
		Height:  opts.Height,
		Style:   opts.Style,
		SizeMax: opts.SizeMax,
	}

	colors := make(map[string]string)
	bounds := geom.NewBounds(geom.XY)
	for i := range cs.Units {
		u := &cs.Units[i]
		if !Plottable(u) {
			continue
		}

		color, ok := colors[u.Status]
		if !ok {
			color = statusPalette[len(colors)%len(statusPalette)]
			colors[u.Status] = color
			m.Legend = append(m.Legend, models.LegendEntry{Status: u.Status, Color: color})
		}

		bounds.Extend(geom.NewPointFlat(geom.XY, []float64{*u.Longitude, *u.Latitude}))

		m.Markers = append(m.Markers, models.Marker{
			Lat:        *u.Latitude,
			Lon:        *u.Longitude,
			Capacity:   *u.Capacity,
			Diameter:   diameter(*u.Capacity, maxCap, opts.SizeMax),
			Status:     u.Status,
			Color:      color,
			HoverName:  u.PlantName,
			HoverLines: hoverLines(u),
		})
	}

	m.Bounds = models.Bounds{
		MinLon: bounds.Min(0),
		MinLat: bounds.Min(1),
		MaxLon: bounds.Max(0),
		MaxLat: bounds.Max(1),
	}
	m.CenterLon = (m.Bounds.MinLon + m.Bounds.MaxLon) / 2
	m.CenterLat = (m.Bounds.MinLat + m.Bounds.MaxLat) / 2

	return m, true
}

func hoverLines(u *models.PlantUnit) []string {
	return []string{
		"Unit name: " + u.UnitName,
		"Country: " + u.Country,
		"City: " + u.City,
		"Fuel: " + u.Fuel,
		"Capacity (MW): " + FormatNumber(u.Capacity, 1),
		"Technology: " + u.Technology,
		"Hydrogen capable?: " + u.HydrogenCapable,
		"Status: " + u.Status,
		"Start year: " + FormatNumber(u.StartYear, -1),
		"Owner: " + u.Owner,
		"Latitude: " + FormatNumber(u.Latitude, 4),
		"Longitude: " + FormatNumber(u.Longitude, 4),
	}
}

// FormatNumber renders v with prec decimals, or in shortest form when
// prec < 0. Missing values render as "".
func FormatNumber(v *float64, prec int) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', prec, 64)
}
