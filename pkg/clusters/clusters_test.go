package clusters

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/render"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "a1", "geometry": {"type": "Point", "coordinates": [10, 50]},
     "properties": {"cluster_id": "alpha", "label": "A1", "marker-color": "#f00"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [12, 52]},
     "properties": {"cluster_id": 7, "id": "b1"}},
    {"type": "Feature", "id": 3, "geometry": {"type": "Point", "coordinates": [11, 51]},
     "properties": {"cluster_id": "alpha", "text": "A2", "icon": "cafe"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [0, 0]},
     "properties": {"name": "lonely"}}
  ]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if diff := cmp.Diff([]string{"alpha", "7"}, s.IDs()); diff != "" {
		t.Errorf("group IDs (-want +got):\n%s", diff)
	}

	alpha, ok := s.Group("alpha")
	if !ok {
		t.Fatal("group alpha missing")
	}
	if len(alpha.Members) != 2 {
		t.Fatalf("alpha has %d members", len(alpha.Members))
	}
	if alpha.Center != (orb.Point{10.5, 50.5}) {
		t.Errorf("alpha center = %v", alpha.Center)
	}

	a1, a2 := alpha.Members[0], alpha.Members[1]
	if a1.ID != "a1" || a1.Attrs.Text != "A1" || a1.Attrs.Color != "#f00" {
		t.Errorf("a1 = %+v", a1)
	}
	if a2.ID != "3" || a2.Attrs.Text != "A2" || a2.Attrs.Icon != "cafe" {
		t.Errorf("a2 = %+v", a2)
	}

	seven, _ := s.Group("7")
	if seven.Members[0].ID != "b1" {
		t.Errorf("b1 id = %q", seven.Members[0].ID)
	}

	if len(s.Singles) != 1 || s.Singles[0].ID != "feature-3" {
		t.Errorf("singles = %+v", s.Singles)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"line geometry", `{"type":"FeatureCollection","features":[
			{"type":"Feature","geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, errors.ErrCodeInvalidGeoJSON) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidGeoJSON)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.geojson")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Groups) != 2 {
		t.Errorf("groups = %d", len(s.Groups))
	}

	_, err = Load(filepath.Join(dir, "missing.geojson"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestAddTo(t *testing.T) {
	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	m := mapview.New(mapview.View{Center: orb.Point{10.5, 50.5}, Zoom: 3, Width: 800, Height: 600})
	s.AddTo(m)

	cl, ok := m.Cluster("alpha")
	if !ok || cl.Len() != 2 {
		t.Fatalf("cluster alpha = %v", cl)
	}
	scene := m.Snapshot()
	if scene.Count(render.KindCluster) != 2 || scene.Count(render.KindMarker) != 1 {
		t.Errorf("scene has %d clusters and %d markers", scene.Count(render.KindCluster), scene.Count(render.KindMarker))
	}
	for _, mk := range scene.Markers {
		if math.IsNaN(mk.Screen[0]) {
			t.Errorf("marker %s not projected", mk.ID)
		}
	}
}
