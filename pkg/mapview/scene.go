package mapview

import (
	"cmp"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/spidermap/pkg/render"
)

// Snapshot captures every shown marker and line in drawing order. Primitives
// that cannot be projected in the current view are skipped.
func (m *Map) Snapshot() render.Scene {
	s := render.Scene{
		Width:  m.view.Width,
		Height: m.view.Height,
		Center: m.view.Center,
		Zoom:   m.view.Zoom,
	}

	lines := make([]*line, 0, len(m.lines))
	for _, l := range m.lines {
		if l.visible {
			lines = append(lines, l)
		}
	}
	slices.SortFunc(lines, func(a, b *line) int { return cmp.Compare(a.seq, b.seq) })
	for _, l := range lines {
		screen := make(orb.LineString, 0, len(l.path))
		for _, p := range l.path {
			sp, ok := m.view.ToScreen(p)
			if !ok {
				screen = nil
				break
			}
			screen = append(screen, orb.Point{sp.X, sp.Y})
		}
		if screen == nil {
			continue
		}
		s.Lines = append(s.Lines, render.Line{
			ID:     string(l.handle),
			Geo:    slices.Clone(l.path),
			Screen: screen,
			Color:  l.style.Color,
			Width:  l.style.Width,
		})
	}

	markers := make([]*marker, 0, len(m.markers))
	for _, mk := range m.markers {
		if m.drawable(mk) {
			markers = append(markers, mk)
		}
	}
	slices.SortFunc(markers, func(a, b *marker) int { return cmp.Compare(a.seq, b.seq) })
	for _, mk := range markers {
		sp, ok := m.view.ToScreen(mk.loc)
		if !ok {
			continue
		}
		s.Markers = append(s.Markers, render.Marker{
			ID:     string(mk.handle),
			Kind:   mk.kind,
			Geo:    mk.loc,
			Screen: orb.Point{sp.X, sp.Y},
			Label:  mk.attrs.Text,
			Color:  mk.attrs.Color,
			Icon:   mk.attrs.Icon,
			Ref:    mk.ref,
		})
	}
	return s
}

// GeoJSON exports the current snapshot as a FeatureCollection.
func (m *Map) GeoJSON() *geojson.FeatureCollection {
	return render.GeoJSON(m.Snapshot())
}
