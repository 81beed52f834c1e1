// Package clusters reads pre-clustered points from GeoJSON.
//
// Input is a FeatureCollection of Point features. Features that share a
// cluster_id property form one group; features without it are singles that
// are drawn as plain markers. Groups keep the order in which their first
// feature appears, and members keep feature order.
//
// Recognized feature properties:
//
//	cluster_id    string or number, the group key
//	id            member ID when the feature has no top-level id
//	label, text   marker text
//	marker-color  marker color (simplestyle), or color
//	marker-symbol marker icon (simplestyle), or icon
//
// All properties are kept as the member's metadata.
package clusters

import (
	"fmt"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/spider"
)

// PropClusterID is the feature property that assigns a point to a group.
const PropClusterID = "cluster_id"

// Group is one cluster read from input.
type Group struct {
	ID      string
	Center  orb.Point
	Members []*spider.Member
}

// Set is the content of one input file.
type Set struct {
	Groups  []*Group
	Singles []*spider.Member
}

// Load reads and parses the GeoJSON file at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a FeatureCollection and groups its features.
func Parse(data []byte) (*Set, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGeoJSON, err, "decode feature collection")
	}
	return FromFeatureCollection(fc)
}

// FromFeatureCollection groups the point features of fc.
func FromFeatureCollection(fc *geojson.FeatureCollection) (*Set, error) {
	s := &Set{}
	index := map[string]*Group{}
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidGeoJSON, "feature %d: geometry must be a Point, got %s", i, geometryType(f.Geometry))
		}
		m := &spider.Member{
			ID:       memberID(f, i),
			Location: pt,
			Attrs:    attrs(f.Properties),
			Metadata: f.Properties,
		}

		cid, ok := stringProp(f.Properties, PropClusterID)
		if !ok {
			s.Singles = append(s.Singles, m)
			continue
		}
		g, ok := index[cid]
		if !ok {
			g = &Group{ID: cid}
			index[cid] = g
			s.Groups = append(s.Groups, g)
		}
		g.Members = append(g.Members, m)
	}
	for _, g := range s.Groups {
		g.Center = centroid(g.Members)
	}
	return s, nil
}

// Group returns the group with the given ID.
func (s *Set) Group(id string) (*Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return nil, false
}

// IDs returns the group IDs in input order.
func (s *Set) IDs() []string {
	ids := make([]string, len(s.Groups))
	for i, g := range s.Groups {
		ids[i] = g.ID
	}
	return ids
}

// AddTo draws every group as a cluster marker and every single as a plain
// marker on m.
func (s *Set) AddTo(m *mapview.Map) {
	for _, g := range s.Groups {
		m.AddCluster(g.ID, g.Center, g.Members)
	}
	for _, single := range s.Singles {
		m.AddMarker(single)
	}
}

func centroid(members []*spider.Member) orb.Point {
	mp := make(orb.MultiPoint, len(members))
	for i, m := range members {
		mp[i] = m.Location
	}
	c, _ := planar.CentroidArea(mp)
	return c
}

func memberID(f *geojson.Feature, i int) string {
	switch id := f.ID.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	if id, ok := stringProp(f.Properties, "id"); ok {
		return id
	}
	return "feature-" + strconv.Itoa(i)
}

func attrs(p geojson.Properties) spider.MarkerAttrs {
	var a spider.MarkerAttrs
	a.Text = firstProp(p, "label", "text")
	a.Color = firstProp(p, "marker-color", "color")
	a.Icon = firstProp(p, "marker-symbol", "icon")
	return a
}

func firstProp(p geojson.Properties, keys ...string) string {
	for _, k := range keys {
		if v, ok := stringProp(p, k); ok {
			return v
		}
	}
	return ""
}

// stringProp returns a string or numeric property as a string.
func stringProp(p geojson.Properties, key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}
