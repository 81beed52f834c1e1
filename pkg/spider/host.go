package spider

import "github.com/paulmach/orb"

// Projector converts between geographic coordinates and screen pixels for the
// current view. Both methods return false when the conversion is not
// available, for example while the map is in a mode without a projection.
type Projector interface {
	ToScreen(loc orb.Point) (Point, bool)
	ToGeo(p Point) (orb.Point, bool)
}

// Surface creates and mutates primitives on the host map.
type Surface interface {
	CreateMarker(loc orb.Point, attrs MarkerAttrs) Handle
	CreateLine(path orb.LineString, style LineStyle) Handle
	SetLineStyle(h Handle, style LineStyle)
	SetVisible(h Handle, visible bool)
	Remove(h Handle)
}

// EventSource delivers map events. Handlers run synchronously on the host's
// event loop. The returned function removes the subscription.
type EventSource interface {
	Subscribe(kind EventKind, fn func(Event)) (unsubscribe func())
}

// Host is everything the controller needs from a map widget.
type Host interface {
	Projector
	Surface
	EventSource
}

// ClusterLayer is the host layer that draws cluster markers.
type ClusterLayer interface {
	SetVisible(visible bool)
}

// EventKind enumerates the host events the controller reacts to.
type EventKind int

const (
	EventMapClick EventKind = iota
	EventViewChangeStart
	EventClusterClick
	EventMarkerClick
	EventMarkerOver
	EventMarkerOut
)

var eventKindNames = [...]string{
	EventMapClick:        "map_click",
	EventViewChangeStart: "view_change_start",
	EventClusterClick:    "cluster_click",
	EventMarkerClick:     "marker_click",
	EventMarkerOver:      "marker_over",
	EventMarkerOut:       "marker_out",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return "unknown"
}

// Event is a host event. Cluster is set for EventClusterClick. Marker is the
// handle under the pointer for marker events; Member is set by the host when
// that marker represents a plain (unclustered) member.
type Event struct {
	Kind    EventKind
	Cluster *Cluster
	Marker  Handle
	Member  *Member
}
