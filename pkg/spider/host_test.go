package spider

import (
	"fmt"

	"github.com/paulmach/orb"
)

// fakeHost is a recording Host with a linear projection: one degree equals
// one pixel, centred on the origin.
type fakeHost struct {
	nextID    int
	markers   map[Handle]orb.Point
	lines     map[Handle]LineStyle
	visible   map[Handle][]bool
	removed   []Handle
	calls     int
	handlers  map[EventKind][]func(Event)
	noScreen  bool
	noGeoFrom int // ToGeo fails from this call on when > 0
	geoCalls  int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		markers:  map[Handle]orb.Point{},
		lines:    map[Handle]LineStyle{},
		visible:  map[Handle][]bool{},
		handlers: map[EventKind][]func(Event){},
	}
}

func (h *fakeHost) ToScreen(loc orb.Point) (Point, bool) {
	if h.noScreen {
		return Point{}, false
	}
	return Point{X: loc[0], Y: -loc[1]}, true
}

func (h *fakeHost) ToGeo(p Point) (orb.Point, bool) {
	h.geoCalls++
	if h.noGeoFrom > 0 && h.geoCalls >= h.noGeoFrom {
		return orb.Point{}, false
	}
	return orb.Point{p.X, -p.Y}, true
}

func (h *fakeHost) handle(prefix string) Handle {
	h.nextID++
	return Handle(fmt.Sprintf("%s-%d", prefix, h.nextID))
}

func (h *fakeHost) CreateMarker(loc orb.Point, _ MarkerAttrs) Handle {
	h.calls++
	id := h.handle("marker")
	h.markers[id] = loc
	return id
}

func (h *fakeHost) CreateLine(_ orb.LineString, style LineStyle) Handle {
	h.calls++
	id := h.handle("line")
	h.lines[id] = style
	return id
}

func (h *fakeHost) SetLineStyle(id Handle, style LineStyle) {
	h.calls++
	h.lines[id] = style
}

func (h *fakeHost) SetVisible(id Handle, visible bool) {
	h.calls++
	h.visible[id] = append(h.visible[id], visible)
}

func (h *fakeHost) Remove(id Handle) {
	h.calls++
	h.removed = append(h.removed, id)
	delete(h.markers, id)
	delete(h.lines, id)
}

func (h *fakeHost) Subscribe(kind EventKind, fn func(Event)) func() {
	h.handlers[kind] = append(h.handlers[kind], fn)
	idx := len(h.handlers[kind]) - 1
	return func() { h.handlers[kind][idx] = nil }
}

func (h *fakeHost) fire(e Event) {
	for _, fn := range h.handlers[e.Kind] {
		if fn != nil {
			fn(e)
		}
	}
}

func (h *fakeHost) subscriptions() int {
	n := 0
	for _, fns := range h.handlers {
		for _, fn := range fns {
			if fn != nil {
				n++
			}
		}
	}
	return n
}

type fakeLayer struct{ visible []bool }

func (l *fakeLayer) SetVisible(v bool) { l.visible = append(l.visible, v) }

func newCluster(id string, n int) *Cluster {
	c := &Cluster{ID: id, Center: orb.Point{0, 0}, Marker: Handle("cluster-" + id)}
	for i := 0; i < n; i++ {
		c.Members = append(c.Members, &Member{
			ID:       fmt.Sprintf("%s/%d", id, i),
			Location: orb.Point{0, 0},
			Attrs:    MarkerAttrs{Text: fmt.Sprint(i)},
			Metadata: map[string]int{"index": i},
		})
	}
	return c
}
