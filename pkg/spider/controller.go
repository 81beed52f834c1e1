package spider

import (
	"slices"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/observability"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Option configures a [Controller] at construction time.
type Option func(*Controller)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptions applies a partial configuration after construction, exactly as
// [Controller.Configure] would.
func WithOptions(o *Options) Option {
	return func(c *Controller) { c.pending = append(c.pending, o) }
}

// Controller opens and collapses spider layouts for one map.
// At most one cluster is open at any time.
type Controller struct {
	host   Host
	layer  ClusterLayer
	logger *log.Logger
	cfg    settings

	listeners    []listenerEntry
	nextListener int
	subs         []func()
	disposed     bool
	pending      []*Options

	current  *Cluster
	proxies  []*Proxy
	byMarker map[Handle]*Proxy
}

// New creates a controller bound to host and subscribes to its events.
// layer may be nil when the host has no separate cluster layer.
func New(host Host, layer ClusterLayer, opts ...Option) *Controller {
	c := &Controller{
		host:   host,
		layer:  layer,
		logger: log.Default(),
		cfg:    defaultSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, o := range c.pending {
		c.Configure(o)
	}
	c.pending = nil

	c.subs = []func(){
		host.Subscribe(EventMapClick, func(Event) { c.Collapse() }),
		host.Subscribe(EventViewChangeStart, func(Event) { c.Collapse() }),
		host.Subscribe(EventClusterClick, c.onClusterClick),
		host.Subscribe(EventMarkerClick, c.onMarkerClick),
		host.Subscribe(EventMarkerOver, c.onMarkerOver),
		host.Subscribe(EventMarkerOut, c.onMarkerOut),
	}
	return c
}

// =============================================================================
// Public API
// =============================================================================

// Activate opens cl in its spider layout. Activating the cluster that is
// already open does nothing. Any other open cluster is collapsed first.
//
// Clusters without members, with nil members, or whose positions cannot be
// projected are left untouched: the original marker stays visible and no
// proxies are created.
func (c *Controller) Activate(cl *Cluster) {
	if c.disposed || !valid(cl) {
		return
	}
	if cl == c.current {
		return
	}
	c.Collapse()

	locs, ok := c.place(cl)
	if !ok {
		c.logger.Debug("spider layout skipped: projection unavailable", "cluster", cl.ID)
		return
	}

	c.proxies = make([]*Proxy, len(cl.Members))
	c.byMarker = make(map[Handle]*Proxy, len(cl.Members))
	for i, m := range cl.Members {
		stick := c.host.CreateLine(orb.LineString{cl.Center, locs[i]}, c.cfg.stick)
		marker := c.host.CreateMarker(locs[i], m.Attrs)
		p := &Proxy{Marker: marker, Connector: stick, Member: m, Location: locs[i]}
		c.proxies[i] = p
		c.byMarker[marker] = p
	}
	c.host.SetVisible(cl.Marker, false)
	c.current = cl

	mode := layout.ModeFor(len(cl.Members), c.cfg.layout)
	c.logger.Debug("opened cluster", "cluster", cl.ID, "members", len(cl.Members), "mode", mode)
	observability.Spider().OnExpand(cl.ID, len(cl.Members), string(mode))
}

// Collapse closes the open cluster, removes its proxies and connectors and
// shows the cluster marker again. It does nothing when no cluster is open.
func (c *Controller) Collapse() {
	cl := c.current
	if cl == nil {
		return
	}
	c.host.SetVisible(cl.Marker, true)
	for _, p := range c.proxies {
		c.host.Remove(p.Connector)
		c.host.Remove(p.Marker)
	}
	c.current = nil
	c.proxies = nil
	c.byMarker = nil

	c.logger.Debug("collapsed cluster", "cluster", cl.ID)
	observability.Spider().OnCollapse(cl.ID)
}

// Configure collapses any open cluster and then applies every field set in
// o. The new settings take effect on the next activation. A nil o only
// collapses.
func (c *Controller) Configure(o *Options) {
	c.Collapse()
	if o == nil {
		return
	}
	c.cfg.merge(o)
	if o.Visible != nil && c.layer != nil {
		c.layer.SetVisible(*o.Visible)
	}
}

// AddListener registers l for selection events and returns a function that
// removes it. Listeners run after the callbacks set through [Options], in
// registration order.
func (c *Controller) AddListener(l Listener) (remove func()) {
	if l == nil {
		return func() {}
	}
	id := c.nextListener
	c.nextListener++
	c.listeners = append(c.listeners, listenerEntry{id: id, l: l})
	return func() {
		c.listeners = slices.DeleteFunc(c.listeners, func(e listenerEntry) bool { return e.id == id })
	}
}

// Dispose collapses the open cluster and releases every event subscription.
// The controller must not be used afterwards.
func (c *Controller) Dispose() {
	if c.disposed {
		return
	}
	c.Collapse()
	for _, unsubscribe := range c.subs {
		if unsubscribe != nil {
			unsubscribe()
		}
	}
	c.subs = nil
	c.listeners = nil
	c.disposed = true
}

// ClusterLayer returns the host cluster layer the controller was built with.
func (c *Controller) ClusterLayer() ClusterLayer { return c.layer }

// IsOpen reports whether a cluster is currently open.
func (c *Controller) IsOpen() bool { return c.current != nil }

// Current returns the open cluster, or nil.
func (c *Controller) Current() *Cluster { return c.current }

// Proxies returns a copy of the proxies of the open cluster in member order.
func (c *Controller) Proxies() []Proxy {
	out := make([]Proxy, len(c.proxies))
	for i, p := range c.proxies {
		out[i] = *p
	}
	return out
}

// ProxyFor returns the proxy drawn with marker h.
func (c *Controller) ProxyFor(h Handle) (Proxy, bool) {
	p, ok := c.byMarker[h]
	if !ok {
		return Proxy{}, false
	}
	return *p, true
}

// LayoutOptions returns the layout options used for the next activation.
func (c *Controller) LayoutOptions() layout.Options { return c.cfg.layout }

// ConnectorStyles returns the base and hover connector styles.
func (c *Controller) ConnectorStyles() (base, hover LineStyle) {
	return c.cfg.stick, c.cfg.stickHover
}

// =============================================================================
// Event handlers
// =============================================================================

func (c *Controller) onClusterClick(e Event) {
	if e.Cluster == nil {
		return
	}
	c.notifyUnselected()
	c.Activate(e.Cluster)
}

func (c *Controller) onMarkerClick(e Event) {
	if p, ok := c.byMarker[e.Marker]; ok {
		cl := c.current
		c.notifySelected(p.Member, cl)
		c.Collapse()
		return
	}
	if e.Member != nil {
		c.notifySelected(e.Member, nil)
	}
}

func (c *Controller) onMarkerOver(e Event) {
	if p, ok := c.byMarker[e.Marker]; ok {
		c.host.SetLineStyle(p.Connector, c.cfg.stickHover)
	}
}

func (c *Controller) onMarkerOut(e Event) {
	if p, ok := c.byMarker[e.Marker]; ok {
		c.host.SetLineStyle(p.Connector, c.cfg.stick)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// place computes every proxy location before anything is drawn, so a failed
// projection never leaves a half-open cluster behind.
func (c *Controller) place(cl *Cluster) ([]orb.Point, bool) {
	center, ok := c.host.ToScreen(cl.Center)
	if !ok {
		return nil, false
	}
	offsets := layout.Compute(len(cl.Members), c.cfg.layout)
	locs := make([]orb.Point, len(offsets))
	for i, o := range offsets {
		loc, ok := c.host.ToGeo(center.Add(o.DX, o.DY))
		if !ok {
			return nil, false
		}
		locs[i] = loc
	}
	return locs, true
}

func (c *Controller) notifySelected(m *Member, cl *Cluster) {
	clusterID := ""
	if cl != nil {
		clusterID = cl.ID
	}
	c.logger.Debug("pin selected", "member", m.ID, "cluster", clusterID)
	observability.Spider().OnPinSelected(m.ID, clusterID)

	c.cfg.configured.PinSelected(m, cl)
	for _, e := range slices.Clone(c.listeners) {
		e.l.PinSelected(m, cl)
	}
}

func (c *Controller) notifyUnselected() {
	c.cfg.configured.PinUnselected()
	for _, e := range slices.Clone(c.listeners) {
		e.l.PinUnselected()
	}
}

func valid(cl *Cluster) bool {
	if cl.Len() == 0 {
		return false
	}
	for _, m := range cl.Members {
		if m == nil {
			return false
		}
	}
	return true
}
