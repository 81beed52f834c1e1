package render

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/errors"
)

// Kind distinguishes the markers of a scene.
type Kind string

const (
	KindCluster Kind = "cluster"
	KindProxy   Kind = "proxy"
	KindMarker  Kind = "marker"
)

// Marker is one visible marker.
type Marker struct {
	ID     string    `json:"id"`
	Kind   Kind      `json:"kind"`
	Geo    orb.Point `json:"geo"`
	Screen orb.Point `json:"screen"`
	Label  string    `json:"label,omitempty"`
	Color  string    `json:"color,omitempty"`
	Icon   string    `json:"icon,omitempty"`

	// Ref is the cluster ID for cluster markers and the member ID otherwise.
	Ref string `json:"ref,omitempty"`
}

// Line is one visible connector.
type Line struct {
	ID     string         `json:"id"`
	Geo    orb.LineString `json:"geo"`
	Screen orb.LineString `json:"screen"`
	Color  string         `json:"color,omitempty"`
	Width  float64        `json:"width,omitempty"`
}

// Scene is a snapshot of a map view. Lines are drawn below markers; both
// are listed in drawing order.
type Scene struct {
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Center  orb.Point `json:"center"`
	Zoom    float64   `json:"zoom"`
	Markers []Marker  `json:"markers"`
	Lines   []Line    `json:"lines"`
}

// Count returns the number of markers of kind k.
func (s Scene) Count(k Kind) int {
	n := 0
	for _, m := range s.Markers {
		if m.Kind == k {
			n++
		}
	}
	return n
}

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists every format [Render] accepts.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// Render produces scene in the named format. FormatJSON is GeoJSON.
func Render(ctx context.Context, s Scene, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return SVG(s), nil
	case FormatJSON:
		data, err := GeoJSON(s).MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal geojson: %w", err)
		}
		return data, nil
	case FormatDOT:
		return []byte(ToDOT(s)), nil
	case FormatPNG:
		return DOTToPNG(ctx, ToDOT(s))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}
