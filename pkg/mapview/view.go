package mapview

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/project"

	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/spider"
)

const (
	// TileSize is the edge length of one map tile in pixels.
	TileSize = 256

	// MaxLatitude is the northern limit of the Web Mercator projection.
	MaxLatitude = 85.05112878

	// MaxZoom is the deepest zoom level a view accepts.
	MaxZoom = 24.0
)

const earthCircumference = 2 * math.Pi * orb.EarthRadius

// View is the visible window of a map: a geographic center, a zoom level and
// a size in pixels.
type View struct {
	Center orb.Point `json:"center" toml:"center"`
	Zoom   float64   `json:"zoom" toml:"zoom"`
	Width  int       `json:"width" toml:"width"`
	Height int       `json:"height" toml:"height"`
}

// DefaultView returns an 800x600 view of the whole world.
func DefaultView() View {
	return View{Zoom: 2, Width: 800, Height: 600}
}

// Validate reports whether v can be projected.
func (v View) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "view size must be positive, got %dx%d", v.Width, v.Height)
	}
	if v.Zoom < 0 || v.Zoom > MaxZoom || math.IsNaN(v.Zoom) {
		return errors.New(errors.ErrCodeInvalidOptions, "zoom must be within [0, %g], got %g", MaxZoom, v.Zoom)
	}
	if !validLocation(v.Center) {
		return errors.New(errors.ErrCodeInvalidOptions, "center %v is outside the projection", v.Center)
	}
	return nil
}

// Tile returns the map tile under the view center at the nearest integer zoom.
func (v View) Tile() maptile.Tile {
	return maptile.At(v.Center, maptile.Zoom(math.Round(v.Zoom)))
}

// ToScreen projects loc to pixels relative to the top-left corner of v.
func (v View) ToScreen(loc orb.Point) (spider.Point, bool) {
	w, ok := v.world(loc)
	if !ok {
		return spider.Point{}, false
	}
	c, ok := v.world(v.Center)
	if !ok {
		return spider.Point{}, false
	}
	return spider.Point{
		X: w[0] - c[0] + float64(v.Width)/2,
		Y: w[1] - c[1] + float64(v.Height)/2,
	}, true
}

// ToGeo is the inverse of ToScreen. It fails for pixels beyond the poles.
func (v View) ToGeo(p spider.Point) (orb.Point, bool) {
	c, ok := v.world(v.Center)
	if !ok {
		return orb.Point{}, false
	}
	size := worldSize(v.Zoom)
	x := p.X - float64(v.Width)/2 + c[0]
	y := p.Y - float64(v.Height)/2 + c[1]
	if y < 0 || y > size || math.IsNaN(x) || math.IsNaN(y) {
		return orb.Point{}, false
	}
	merc := orb.Point{
		(x/size - 0.5) * earthCircumference,
		(0.5 - y/size) * earthCircumference,
	}
	return project.Mercator.ToWGS84(merc), true
}

// Pan returns v with its center moved by (dx, dy) pixels.
func (v View) Pan(dx, dy float64) View {
	if loc, ok := v.ToGeo(spider.Point{X: float64(v.Width)/2 + dx, Y: float64(v.Height)/2 + dy}); ok {
		v.Center = loc
	}
	return v
}

// world projects loc to global pixel coordinates at the view's zoom.
func (v View) world(loc orb.Point) (orb.Point, bool) {
	if !validLocation(loc) {
		return orb.Point{}, false
	}
	m := project.WGS84.ToMercator(loc)
	size := worldSize(v.Zoom)
	return orb.Point{
		(m[0]/earthCircumference + 0.5) * size,
		(0.5 - m[1]/earthCircumference) * size,
	}, true
}

func worldSize(zoom float64) float64 { return TileSize * math.Exp2(zoom) }

func validLocation(loc orb.Point) bool {
	lon, lat := loc[0], loc[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lat >= -MaxLatitude && lat <= MaxLatitude
}
