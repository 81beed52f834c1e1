package spider

import (
	"github.com/paulmach/orb"
)

// Handle identifies a primitive (marker or line) owned by the host map.
// Hosts choose the encoding; the controller only compares handles and passes
// them back to the host.
type Handle string

// Point is a position in screen pixels relative to the map control.
type Point struct {
	X, Y float64
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point { return Point{X: p.X + dx, Y: p.Y + dy} }

// MarkerAttrs are the display attributes copied from a member to its proxy.
type MarkerAttrs struct {
	Icon               string `json:"icon,omitempty"`
	Color              string `json:"color,omitempty"`
	Text               string `json:"text,omitempty"`
	Anchor             Point  `json:"anchor,omitempty"`
	TextOffset         Point  `json:"text_offset,omitempty"`
	RoundClickableArea bool   `json:"round_clickable_area,omitempty"`
}

// LineStyle describes how a connector line is stroked.
type LineStyle struct {
	Color string  `json:"color,omitempty" toml:"color"`
	Width float64 `json:"width,omitempty" toml:"width"`
}

// Member is one item of a cluster.
type Member struct {
	ID       string
	Location orb.Point
	Attrs    MarkerAttrs

	// Metadata is carried by reference and never interpreted.
	Metadata any
}

// Cluster is a group of members drawn by the host as a single marker.
// The controller treats clusters as read-only and compares them by pointer.
type Cluster struct {
	ID      string
	Center  orb.Point
	Marker  Handle
	Members []*Member
}

// Len returns the number of members in the cluster.
func (c *Cluster) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Members)
}

// Proxy is the transient stand-in drawn for one member while its cluster is open.
type Proxy struct {
	Marker    Handle
	Connector Handle
	Member    *Member
	Location  orb.Point
}
