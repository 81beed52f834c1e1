package spider

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

type recorder struct {
	events []string
	picked []*Member
	from   []*Cluster
}

func (r *recorder) PinSelected(m *Member, c *Cluster) {
	r.events = append(r.events, "selected")
	r.picked = append(r.picked, m)
	r.from = append(r.from, c)
}

func (r *recorder) PinUnselected() { r.events = append(r.events, "unselected") }

func TestActivateCreatesOneProxyPerMember(t *testing.T) {
	for _, n := range []int{1, 2, 9, 10, 50} {
		host := newFakeHost()
		c := New(host, nil)
		cl := newCluster("a", n)

		c.Activate(cl)

		if !c.IsOpen() || c.Current() != cl {
			t.Fatalf("n=%d: cluster not open", n)
		}
		proxies := c.Proxies()
		if len(proxies) != n {
			t.Fatalf("n=%d: got %d proxies", n, len(proxies))
		}
		if len(host.markers) != n || len(host.lines) != n {
			t.Errorf("n=%d: host has %d markers and %d lines", n, len(host.markers), len(host.lines))
		}
		for i, p := range proxies {
			if p.Member != cl.Members[i] {
				t.Errorf("n=%d: proxy %d wraps the wrong member", n, i)
			}
			if _, ok := c.ProxyFor(p.Marker); !ok {
				t.Errorf("n=%d: proxy %d not indexed by marker", n, i)
			}
		}
		if got := host.visible[cl.Marker]; !cmp.Equal(got, []bool{false}) {
			t.Errorf("n=%d: cluster marker visibility = %v", n, got)
		}
	}
}

func TestActivateUsesLayoutOffsets(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	cl := newCluster("a", 4)
	c.Activate(cl)

	offsets := layout.Compute(4, layout.DefaultOptions())
	for i, p := range c.Proxies() {
		want := orb.Point{offsets[i].DX, -offsets[i].DY}
		if math.Abs(p.Location[0]-want[0]) > 1e-9 || math.Abs(p.Location[1]-want[1]) > 1e-9 {
			t.Errorf("proxy %d at %v, want %v", i, p.Location, want)
		}
	}
}

func TestActivateSameClusterIsNoop(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	cl := newCluster("a", 5)

	c.Activate(cl)
	before := c.Proxies()
	calls := host.calls

	c.Activate(cl)

	if host.calls != calls {
		t.Errorf("re-activation made %d host calls", host.calls-calls)
	}
	if diff := cmp.Diff(before, c.Proxies()); diff != "" {
		t.Errorf("proxies changed (-before +after):\n%s", diff)
	}
}

func TestActivateOtherClusterCollapsesFirst(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	a, b := newCluster("a", 3), newCluster("b", 4)

	c.Activate(a)
	first := c.Proxies()
	c.Activate(b)

	if c.Current() != b {
		t.Fatal("second cluster not open")
	}
	if got := host.visible[a.Marker]; !cmp.Equal(got, []bool{false, true}) {
		t.Errorf("first cluster marker visibility = %v", got)
	}
	for _, p := range first {
		if _, ok := host.markers[p.Marker]; ok {
			t.Errorf("proxy marker %s of first cluster still present", p.Marker)
		}
		if _, ok := host.lines[p.Connector]; ok {
			t.Errorf("connector %s of first cluster still present", p.Connector)
		}
	}
	if len(host.markers) != 4 {
		t.Errorf("host has %d markers, want 4", len(host.markers))
	}
}

func TestActivateInvalidClusters(t *testing.T) {
	tests := []struct {
		name string
		cl   *Cluster
	}{
		{"nil", nil},
		{"empty", &Cluster{ID: "e", Marker: "cluster-e"}},
		{"nil member", &Cluster{ID: "n", Marker: "cluster-n", Members: []*Member{{ID: "x"}, nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := newFakeHost()
			c := New(host, nil)
			c.Activate(tt.cl)
			if c.IsOpen() {
				t.Error("invalid cluster opened")
			}
			if host.calls != 0 {
				t.Errorf("made %d host calls", host.calls)
			}
		})
	}
}

func TestActivateProjectionFailure(t *testing.T) {
	t.Run("to screen", func(t *testing.T) {
		host := newFakeHost()
		host.noScreen = true
		c := New(host, nil)
		c.Activate(newCluster("a", 5))
		if c.IsOpen() || host.calls != 0 {
			t.Errorf("open=%v calls=%d, want closed with no host calls", c.IsOpen(), host.calls)
		}
	})
	t.Run("to geo midway", func(t *testing.T) {
		host := newFakeHost()
		host.noGeoFrom = 3
		c := New(host, nil)
		cl := newCluster("a", 5)
		c.Activate(cl)
		if c.IsOpen() {
			t.Error("cluster opened despite projection failure")
		}
		if len(host.markers) != 0 || len(host.lines) != 0 {
			t.Errorf("half-open cluster: %d markers, %d lines", len(host.markers), len(host.lines))
		}
		if _, ok := host.visible[cl.Marker]; ok {
			t.Error("cluster marker visibility changed")
		}
	})
}

func TestCollapse(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	cl := newCluster("a", 3)
	c.Activate(cl)

	c.Collapse()

	if c.IsOpen() || c.Current() != nil || len(c.Proxies()) != 0 {
		t.Fatal("state not cleared")
	}
	if len(host.markers) != 0 || len(host.lines) != 0 {
		t.Errorf("leftover primitives: %d markers, %d lines", len(host.markers), len(host.lines))
	}
	if len(host.removed) != 6 {
		t.Errorf("removed %d primitives, want 6", len(host.removed))
	}
	if got := host.visible[cl.Marker]; !cmp.Equal(got, []bool{false, true}) {
		t.Errorf("cluster marker visibility = %v", got)
	}

	calls := host.calls
	c.Collapse()
	if host.calls != calls {
		t.Errorf("second collapse made %d host calls", host.calls-calls)
	}
}

func TestClusterClick(t *testing.T) {
	host := newFakeHost()
	rec := &recorder{}
	c := New(host, nil)
	c.AddListener(rec)
	cl := newCluster("a", 3)

	host.fire(Event{Kind: EventClusterClick, Cluster: cl})

	if c.Current() != cl {
		t.Fatal("cluster click did not open the cluster")
	}
	if !cmp.Equal(rec.events, []string{"unselected"}) {
		t.Errorf("events = %v", rec.events)
	}

	host.fire(Event{Kind: EventClusterClick})
	if c.Current() != cl {
		t.Error("click without cluster changed state")
	}
}

func TestProxyClickSelectsAndCollapses(t *testing.T) {
	host := newFakeHost()
	var order []string
	var gotMember *Member
	var gotCluster *Cluster
	c := New(host, nil, WithOptions(&Options{
		OnPinSelected: func(m *Member, cl *Cluster) {
			order = append(order, "selected")
			gotMember, gotCluster = m, cl
		},
	}))
	c.AddListener(ListenerFuncs{Selected: func(*Member, *Cluster) { order = append(order, "listener") }})
	cl := newCluster("a", 3)
	c.Activate(cl)
	target := c.Proxies()[1]

	host.fire(Event{Kind: EventMarkerClick, Marker: target.Marker})

	if gotMember != cl.Members[1] || gotCluster != cl {
		t.Errorf("selected (%v, %v), want member 1 of cluster a", gotMember, gotCluster)
	}
	if !cmp.Equal(order, []string{"selected", "listener"}) {
		t.Errorf("order = %v", order)
	}
	if c.IsOpen() {
		t.Error("cluster still open after proxy click")
	}
}

func TestPlainMarkerClickKeepsState(t *testing.T) {
	host := newFakeHost()
	rec := &recorder{}
	c := New(host, nil)
	c.AddListener(rec)
	cl := newCluster("a", 3)
	c.Activate(cl)
	plain := &Member{ID: "solo"}
	calls := host.calls

	host.fire(Event{Kind: EventMarkerClick, Marker: "solo-marker", Member: plain})

	if len(rec.picked) != 1 || rec.picked[0] != plain || rec.from[0] != nil {
		t.Fatalf("selection = %v from %v", rec.picked, rec.from)
	}
	if c.Current() != cl || host.calls != calls {
		t.Error("plain marker click changed the open cluster")
	}

	host.fire(Event{Kind: EventMarkerClick, Marker: "unknown"})
	if len(rec.events) != 1 {
		t.Errorf("click on unknown marker notified listeners: %v", rec.events)
	}
}

func TestHoverSwapsConnectorStyle(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	c.Activate(newCluster("a", 3))
	p := c.Proxies()[0]
	other := c.Proxies()[1]

	host.fire(Event{Kind: EventMarkerOver, Marker: p.Marker})
	if got := host.lines[p.Connector]; got != DefaultConnectorHoverStyle {
		t.Errorf("hover style = %v", got)
	}
	if got := host.lines[other.Connector]; got != DefaultConnectorStyle {
		t.Errorf("other connector style = %v", got)
	}

	host.fire(Event{Kind: EventMarkerOut, Marker: p.Marker})
	if got := host.lines[p.Connector]; got != DefaultConnectorStyle {
		t.Errorf("style after out = %v", got)
	}

	calls := host.calls
	host.fire(Event{Kind: EventMarkerOver, Marker: "unrelated"})
	if host.calls != calls {
		t.Error("hover on unrelated marker touched the host")
	}
}

func TestMapEventsCollapse(t *testing.T) {
	for _, kind := range []EventKind{EventMapClick, EventViewChangeStart} {
		t.Run(kind.String(), func(t *testing.T) {
			host := newFakeHost()
			c := New(host, nil)
			c.Activate(newCluster("a", 4))
			host.fire(Event{Kind: kind})
			if c.IsOpen() {
				t.Error("cluster still open")
			}
		})
	}
}

func TestConfigure(t *testing.T) {
	host := newFakeHost()
	layer := &fakeLayer{}
	c := New(host, layer)
	c.Activate(newCluster("a", 3))

	style := LineStyle{Color: "#336699", Width: 3}
	c.Configure(&Options{
		CircleSpiralThreshold: Ptr(2),
		ConnectorStyle:        &style,
		Visible:               Ptr(false),
	})

	if c.IsOpen() {
		t.Error("Configure did not collapse")
	}
	opts := c.LayoutOptions()
	if opts.CircleSpiralThreshold != 2 {
		t.Errorf("threshold = %d", opts.CircleSpiralThreshold)
	}
	if opts.MinCircleRadius != layout.DefaultMinCircleRadius {
		t.Errorf("unset field changed: radius = %v", opts.MinCircleRadius)
	}
	base, hover := c.ConnectorStyles()
	if base != style || hover != DefaultConnectorHoverStyle {
		t.Errorf("styles = %v, %v", base, hover)
	}
	if !cmp.Equal(layer.visible, []bool{false}) {
		t.Errorf("layer visibility = %v", layer.visible)
	}

	cl := newCluster("b", 3)
	c.Activate(cl)
	for _, p := range c.Proxies() {
		if host.lines[p.Connector] != style {
			t.Errorf("connector %s drawn with %v", p.Connector, host.lines[p.Connector])
		}
	}

	c.Configure(nil)
	if c.IsOpen() {
		t.Error("Configure(nil) did not collapse")
	}
	if c.LayoutOptions().CircleSpiralThreshold != 2 {
		t.Error("Configure(nil) changed settings")
	}
}

func TestConfigureSwitchesToSpiral(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil, WithOptions(&Options{CircleSpiralThreshold: Ptr(2)}))
	c.Activate(newCluster("a", 3))

	radii := map[float64]bool{}
	for _, p := range c.Proxies() {
		radii[math.Round(math.Hypot(p.Location[0], p.Location[1])*1e6)] = true
	}
	if len(radii) != 3 {
		t.Errorf("expected distinct spiral radii, got %d distinct values", len(radii))
	}
}

func TestListenerRemove(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	a, b := &recorder{}, &recorder{}
	removeA := c.AddListener(a)
	c.AddListener(b)
	c.AddListener(nil)()

	removeA()
	host.fire(Event{Kind: EventClusterClick, Cluster: newCluster("x", 2)})

	if len(a.events) != 0 {
		t.Errorf("removed listener got %v", a.events)
	}
	if len(b.events) != 1 {
		t.Errorf("listener got %v", b.events)
	}
}

func TestDispose(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	if got := host.subscriptions(); got != 6 {
		t.Fatalf("subscriptions = %d, want 6", got)
	}
	c.Activate(newCluster("a", 3))

	c.Dispose()
	c.Dispose()

	if c.IsOpen() {
		t.Error("Dispose did not collapse")
	}
	if got := host.subscriptions(); got != 0 {
		t.Errorf("subscriptions after dispose = %d", got)
	}
	c.Activate(newCluster("b", 3))
	if c.IsOpen() {
		t.Error("disposed controller opened a cluster")
	}
}

func TestSpiralEndToEnd(t *testing.T) {
	host := newFakeHost()
	c := New(host, nil)
	cl := newCluster("big", 12)
	var picked *Member
	c.AddListener(ListenerFuncs{Selected: func(m *Member, _ *Cluster) { picked = m }})

	host.fire(Event{Kind: EventClusterClick, Cluster: cl})
	proxies := c.Proxies()
	if len(proxies) != 12 {
		t.Fatalf("got %d proxies", len(proxies))
	}
	prev := 0.0
	for i, p := range proxies {
		r := math.Hypot(p.Location[0], p.Location[1])
		if r <= prev {
			t.Errorf("proxy %d radius %v not beyond %v", i, r, prev)
		}
		prev = r
	}

	host.fire(Event{Kind: EventMarkerClick, Marker: proxies[7].Marker})
	if picked != cl.Members[7] {
		t.Errorf("picked %v, want member 7", picked)
	}
	if c.IsOpen() || len(host.markers) != 0 {
		t.Error("cluster not collapsed after selection")
	}
}
