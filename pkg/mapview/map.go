package mapview

import (
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider"
)

// Option configures a [Map].
type Option func(*Map)

// WithLogger sets the logger used for event tracing at debug level.
func WithLogger(l *log.Logger) Option {
	return func(m *Map) {
		if l != nil {
			m.logger = l
		}
	}
}

// Map is an in-memory map widget. It implements [spider.Host]; the cluster
// markers it draws are controlled by the [Layer] returned from
// [Map.ClusterLayer].
//
// A Map is not safe for concurrent use.
type Map struct {
	view   View
	logger *log.Logger
	seq    int

	markers map[spider.Handle]*marker
	lines   map[spider.Handle]*line

	clusters map[spider.Handle]*spider.Cluster
	byID     map[string]*spider.Cluster
	order    []*spider.Cluster
	plain    map[spider.Handle]*spider.Member

	subs    map[spider.EventKind][]*subscription
	layer   *Layer
	hovered spider.Handle
}

type marker struct {
	handle  spider.Handle
	loc     orb.Point
	attrs   spider.MarkerAttrs
	kind    render.Kind
	ref     string
	visible bool
	seq     int
}

type line struct {
	handle  spider.Handle
	path    orb.LineString
	style   spider.LineStyle
	visible bool
	seq     int
}

type subscription struct {
	fn func(spider.Event)
}

// Layer toggles every cluster marker of a map at once.
type Layer struct {
	visible bool
}

// SetVisible shows or hides the cluster markers.
func (l *Layer) SetVisible(visible bool) { l.visible = visible }

// Visible reports whether cluster markers are shown.
func (l *Layer) Visible() bool { return l.visible }

// New creates an empty map showing v.
func New(v View, opts ...Option) *Map {
	m := &Map{
		view:     v,
		logger:   log.Default(),
		markers:  make(map[spider.Handle]*marker),
		lines:    make(map[spider.Handle]*line),
		clusters: make(map[spider.Handle]*spider.Cluster),
		byID:     make(map[string]*spider.Cluster),
		plain:    make(map[spider.Handle]*spider.Member),
		subs:     make(map[spider.EventKind][]*subscription),
		layer:    &Layer{visible: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// View returns the current view.
func (m *Map) View() View { return m.view }

// ClusterLayer returns the layer holding the cluster markers.
func (m *Map) ClusterLayer() *Layer { return m.layer }

// =============================================================================
// Content
// =============================================================================

// AddCluster draws a cluster marker at center labelled with the member count
// and returns the cluster. A cluster with the same id is replaced.
func (m *Map) AddCluster(id string, center orb.Point, members []*spider.Member) *spider.Cluster {
	if old, ok := m.byID[id]; ok {
		m.Remove(old.Marker)
	}
	h := m.addMarker(center, spider.MarkerAttrs{Text: strconv.Itoa(len(members))}, render.KindCluster, id)
	cl := &spider.Cluster{ID: id, Center: center, Marker: h, Members: members}
	m.clusters[h] = cl
	m.byID[id] = cl
	m.order = append(m.order, cl)
	return cl
}

// AddMarker draws a plain marker for a member that belongs to no cluster.
func (m *Map) AddMarker(member *spider.Member) spider.Handle {
	h := m.addMarker(member.Location, member.Attrs, render.KindMarker, member.ID)
	m.plain[h] = member
	return h
}

// Cluster returns the cluster added under id.
func (m *Map) Cluster(id string) (*spider.Cluster, bool) {
	cl, ok := m.byID[id]
	return cl, ok
}

// Clusters returns the clusters in the order they were added.
func (m *Map) Clusters() []*spider.Cluster { return slices.Clone(m.order) }

// SetRef records the domain identifier shown for marker h in snapshots.
func (m *Map) SetRef(h spider.Handle, ref string) {
	if mk, ok := m.markers[h]; ok {
		mk.ref = ref
	}
}

// MarkerInfo describes a marker drawn on the map.
type MarkerInfo struct {
	Handle   spider.Handle
	Location orb.Point
	Attrs    spider.MarkerAttrs
	Kind     render.Kind
	Visible  bool
}

// LineInfo describes a line drawn on the map.
type LineInfo struct {
	Handle  spider.Handle
	Path    orb.LineString
	Style   spider.LineStyle
	Visible bool
}

// Marker returns the marker with handle h.
func (m *Map) Marker(h spider.Handle) (MarkerInfo, bool) {
	mk, ok := m.markers[h]
	if !ok {
		return MarkerInfo{}, false
	}
	return MarkerInfo{Handle: h, Location: mk.loc, Attrs: mk.attrs, Kind: mk.kind, Visible: mk.visible}, true
}

// Line returns the line with handle h.
func (m *Map) Line(h spider.Handle) (LineInfo, bool) {
	l, ok := m.lines[h]
	if !ok {
		return LineInfo{}, false
	}
	return LineInfo{Handle: h, Path: slices.Clone(l.path), Style: l.style, Visible: l.visible}, true
}

// =============================================================================
// spider.Host
// =============================================================================

func (m *Map) ToScreen(loc orb.Point) (spider.Point, bool) { return m.view.ToScreen(loc) }

func (m *Map) ToGeo(p spider.Point) (orb.Point, bool) { return m.view.ToGeo(p) }

// CreateMarker draws a spider proxy marker.
func (m *Map) CreateMarker(loc orb.Point, attrs spider.MarkerAttrs) spider.Handle {
	return m.addMarker(loc, attrs, render.KindProxy, "")
}

func (m *Map) CreateLine(path orb.LineString, style spider.LineStyle) spider.Handle {
	m.seq++
	h := newHandle()
	m.lines[h] = &line{handle: h, path: slices.Clone(path), style: style, visible: true, seq: m.seq}
	return h
}

func (m *Map) SetLineStyle(h spider.Handle, style spider.LineStyle) {
	if l, ok := m.lines[h]; ok {
		l.style = style
	}
}

func (m *Map) SetVisible(h spider.Handle, visible bool) {
	if mk, ok := m.markers[h]; ok {
		mk.visible = visible
	}
	if l, ok := m.lines[h]; ok {
		l.visible = visible
	}
}

// Remove deletes the marker or line h. Unknown handles are ignored.
func (m *Map) Remove(h spider.Handle) {
	if cl, ok := m.clusters[h]; ok {
		delete(m.clusters, h)
		delete(m.byID, cl.ID)
		m.order = slices.DeleteFunc(m.order, func(c *spider.Cluster) bool { return c == cl })
	}
	if m.hovered == h {
		m.hovered = ""
	}
	delete(m.plain, h)
	delete(m.markers, h)
	delete(m.lines, h)
}

func (m *Map) Subscribe(kind spider.EventKind, fn func(spider.Event)) func() {
	s := &subscription{fn: fn}
	m.subs[kind] = append(m.subs[kind], s)
	return func() {
		m.subs[kind] = slices.DeleteFunc(m.subs[kind], func(x *subscription) bool { return x == s })
	}
}

// =============================================================================
// Helpers
// =============================================================================

func (m *Map) addMarker(loc orb.Point, attrs spider.MarkerAttrs, kind render.Kind, ref string) spider.Handle {
	m.seq++
	h := newHandle()
	m.markers[h] = &marker{handle: h, loc: loc, attrs: attrs, kind: kind, ref: ref, visible: true, seq: m.seq}
	return h
}

// drawable reports whether mk is currently shown.
func (m *Map) drawable(mk *marker) bool {
	if !mk.visible {
		return false
	}
	return mk.kind != render.KindCluster || m.layer.visible
}

func (m *Map) emit(e spider.Event) {
	m.logger.Debug("map event", "kind", e.Kind, "marker", e.Marker)
	for _, s := range slices.Clone(m.subs[e.Kind]) {
		s.fn(e)
	}
}

func newHandle() spider.Handle { return spider.Handle(uuid.NewString()) }
