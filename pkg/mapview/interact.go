package mapview

import (
	"math"

	"github.com/matzehuels/spidermap/pkg/spider"
)

// HitRadius is how far from a marker's center, in pixels, a pointer still
// hits it.
const HitRadius = 12.0

// MarkerAt returns the topmost shown marker within [HitRadius] of p.
func (m *Map) MarkerAt(p spider.Point) (spider.Handle, bool) {
	var (
		best spider.Handle
		seq  = -1
	)
	for h, mk := range m.markers {
		if !m.drawable(mk) || mk.seq < seq {
			continue
		}
		s, ok := m.view.ToScreen(mk.loc)
		if !ok || math.Hypot(s.X-p.X, s.Y-p.Y) > HitRadius {
			continue
		}
		best, seq = h, mk.seq
	}
	return best, seq >= 0
}

// ClickAt simulates a click at pixel p: on a marker it behaves like
// [Map.ClickMarker], elsewhere it is a map click.
func (m *Map) ClickAt(p spider.Point) {
	if h, ok := m.MarkerAt(p); ok {
		m.ClickMarker(h)
		return
	}
	m.ClickMap()
}

// ClickMap simulates a click on empty map space.
func (m *Map) ClickMap() {
	m.emit(spider.Event{Kind: spider.EventMapClick})
}

// ClickMarker simulates a click on marker h. Cluster markers raise a cluster
// click; any other marker raises a marker click carrying the plain member,
// if any. It reports false when h is not shown.
func (m *Map) ClickMarker(h spider.Handle) bool {
	mk, ok := m.markers[h]
	if !ok || !m.drawable(mk) {
		return false
	}
	if cl, ok := m.clusters[h]; ok {
		m.emit(spider.Event{Kind: spider.EventClusterClick, Cluster: cl, Marker: h})
		return true
	}
	m.emit(spider.Event{Kind: spider.EventMarkerClick, Marker: h, Member: m.plain[h]})
	return true
}

// HoverAt moves the pointer to pixel p.
func (m *Map) HoverAt(p spider.Point) {
	h, _ := m.MarkerAt(p)
	m.Hover(h)
}

// Hover moves the pointer onto marker h, raising marker-out for the marker
// previously under the pointer and marker-over for h. An empty or unknown
// h moves the pointer off every marker.
func (m *Map) Hover(h spider.Handle) {
	if mk, ok := m.markers[h]; !ok || !m.drawable(mk) {
		h = ""
	}
	if h == m.hovered {
		return
	}
	if prev := m.hovered; prev != "" {
		m.hovered = ""
		m.emit(spider.Event{Kind: spider.EventMarkerOut, Marker: prev, Member: m.plain[prev]})
	}
	if h != "" {
		m.hovered = h
		m.emit(spider.Event{Kind: spider.EventMarkerOver, Marker: h, Member: m.plain[h]})
	}
}

// Hovered returns the marker under the pointer, or "".
func (m *Map) Hovered() spider.Handle { return m.hovered }

// SetView announces a view change and then switches to v.
func (m *Map) SetView(v View) {
	m.emit(spider.Event{Kind: spider.EventViewChangeStart})
	m.view = v
}

// Pan moves the view by (dx, dy) pixels.
func (m *Map) Pan(dx, dy float64) { m.SetView(m.view.Pan(dx, dy)) }

// ZoomBy changes the zoom level by delta, clamped to [0, MaxZoom].
func (m *Map) ZoomBy(delta float64) {
	v := m.view
	v.Zoom = math.Max(0, math.Min(MaxZoom, v.Zoom+delta))
	m.SetView(v)
}
