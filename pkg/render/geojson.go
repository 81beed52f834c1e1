package render

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON converts s to a FeatureCollection in geographic coordinates.
// Lines come first, then markers, each in drawing order. Colors use the
// simplestyle property names understood by most GeoJSON viewers.
func GeoJSON(s Scene) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range s.Lines {
		f := geojson.NewFeature(l.Geo)
		f.ID = l.ID
		f.Properties["kind"] = "connector"
		if l.Color != "" {
			f.Properties["stroke"] = l.Color
		}
		if l.Width > 0 {
			f.Properties["stroke-width"] = l.Width
		}
		fc.Append(f)
	}
	for _, m := range s.Markers {
		f := geojson.NewFeature(m.Geo)
		f.ID = m.ID
		f.Properties["kind"] = string(m.Kind)
		setString(f.Properties, "ref", m.Ref)
		setString(f.Properties, "label", m.Label)
		setString(f.Properties, "marker-color", m.Color)
		setString(f.Properties, "marker-symbol", m.Icon)
		fc.Append(f)
	}
	if len(fc.Features) > 0 {
		b := fc.Features[0].Geometry.Bound()
		for _, f := range fc.Features[1:] {
			b = b.Union(f.Geometry.Bound())
		}
		fc.BBox = geojson.NewBBox(b)
	}
	return fc
}

// Bounds returns the geographic bound of every marker in s.
func Bounds(s Scene) orb.Bound {
	var mp orb.MultiPoint
	for _, m := range s.Markers {
		mp = append(mp, m.Geo)
	}
	return mp.Bound()
}

func setString(p geojson.Properties, key, value string) {
	if value != "" {
		p[key] = value
	}
}
