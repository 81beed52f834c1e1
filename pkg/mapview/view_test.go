package mapview

import (
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/spider"
)

const eps = 1e-6

func TestViewCenterMapsToMiddle(t *testing.T) {
	v := View{Center: orb.Point{13.4, 52.5}, Zoom: 12, Width: 800, Height: 600}
	p, ok := v.ToScreen(v.Center)
	if !ok {
		t.Fatal("ToScreen failed")
	}
	if math.Abs(p.X-400) > eps || math.Abs(p.Y-300) > eps {
		t.Errorf("center at %v, want (400, 300)", p)
	}
}

func TestViewWorldScale(t *testing.T) {
	// At zoom 0 the whole world is one 256 px tile.
	v := View{Center: orb.Point{0, 0}, Zoom: 0, Width: 256, Height: 256}
	tests := []struct {
		loc  orb.Point
		want spider.Point
	}{
		{orb.Point{0, 0}, spider.Point{X: 128, Y: 128}},
		{orb.Point{-180, 0}, spider.Point{X: 0, Y: 128}},
		{orb.Point{90, 0}, spider.Point{X: 192, Y: 128}},
	}
	for _, tt := range tests {
		got, ok := v.ToScreen(tt.loc)
		if !ok {
			t.Fatalf("ToScreen(%v) failed", tt.loc)
		}
		if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
			t.Errorf("ToScreen(%v) = %v, want %v", tt.loc, got, tt.want)
		}
	}
}

func TestViewRoundTrip(t *testing.T) {
	v := View{Center: orb.Point{-73.98, 40.75}, Zoom: 15.5, Width: 1024, Height: 768}
	for _, loc := range []orb.Point{
		{-73.98, 40.75},
		{-73.9801, 40.7512},
		{-73.97, 40.74},
	} {
		p, ok := v.ToScreen(loc)
		if !ok {
			t.Fatalf("ToScreen(%v) failed", loc)
		}
		back, ok := v.ToGeo(p)
		if !ok {
			t.Fatalf("ToGeo(%v) failed", p)
		}
		if math.Abs(back[0]-loc[0]) > 1e-9 || math.Abs(back[1]-loc[1]) > 1e-9 {
			t.Errorf("round trip %v -> %v", loc, back)
		}
	}
}

func TestViewProjectionLimits(t *testing.T) {
	v := View{Center: orb.Point{0, 0}, Zoom: 0, Width: 256, Height: 256}
	if _, ok := v.ToScreen(orb.Point{0, 89}); ok {
		t.Error("ToScreen beyond MaxLatitude should fail")
	}
	if _, ok := v.ToScreen(orb.Point{math.NaN(), 0}); ok {
		t.Error("ToScreen(NaN) should fail")
	}
	if _, ok := v.ToGeo(spider.Point{X: 128, Y: -10}); ok {
		t.Error("ToGeo above the world should fail")
	}
}

func TestViewPan(t *testing.T) {
	v := View{Center: orb.Point{0, 0}, Zoom: 3, Width: 400, Height: 400}
	moved := v.Pan(100, 0)
	if moved.Center[0] <= 0 || math.Abs(moved.Center[1]) > eps {
		t.Errorf("pan east moved center to %v", moved.Center)
	}
	p, _ := moved.ToScreen(v.Center)
	if math.Abs(p.X-100) > eps {
		t.Errorf("old center now at x=%v, want 100", p.X)
	}
}

func TestViewValidate(t *testing.T) {
	tests := []struct {
		name    string
		view    View
		wantErr bool
	}{
		{"default", DefaultView(), false},
		{"zero size", View{Zoom: 1}, true},
		{"negative zoom", View{Zoom: -1, Width: 10, Height: 10}, true},
		{"too deep", View{Zoom: 30, Width: 10, Height: 10}, true},
		{"polar center", View{Center: orb.Point{0, 88}, Width: 10, Height: 10}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidOptions) {
				t.Errorf("code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestViewTile(t *testing.T) {
	v := View{Center: orb.Point{0.1, 0.1}, Zoom: 1.2, Width: 10, Height: 10}
	tile := v.Tile()
	if tile.Z != 1 || tile.X != 1 || tile.Y != 0 {
		t.Errorf("Tile() = %+v", tile)
	}
}
