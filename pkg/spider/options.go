package spider

import (
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Default connector styles.
var (
	DefaultConnectorStyle      = LineStyle{Color: "black", Width: 2}
	DefaultConnectorHoverStyle = LineStyle{Color: "red", Width: 2}
)

// Options is a partial controller configuration. Nil fields keep their
// current value when passed to [Controller.Configure].
type Options struct {
	CircleSpiralThreshold      *int
	MinCircleRadius            *float64
	MinSpiralAngularSeparation *float64
	SpiralDistanceFactor       *float64
	SpiralAngleIncrement       *float64

	ConnectorStyle      *LineStyle
	ConnectorHoverStyle *LineStyle

	// OnPinSelected is called with the selected member and, when the member
	// was picked from an open cluster, that cluster.
	OnPinSelected func(m *Member, c *Cluster)

	// OnPinUnselected is called before a cluster is opened.
	OnPinUnselected func()

	// Visible is forwarded to the cluster layer.
	Visible *bool
}

// Ptr returns a pointer to v. It is a convenience for filling [Options].
func Ptr[T any](v T) *T { return &v }

// settings is the fully resolved configuration held by a controller.
type settings struct {
	layout     layout.Options
	stick      LineStyle
	stickHover LineStyle
	visible    bool
	configured ListenerFuncs
}

func defaultSettings() settings {
	return settings{
		layout:     layout.DefaultOptions(),
		stick:      DefaultConnectorStyle,
		stickHover: DefaultConnectorHoverStyle,
		visible:    true,
	}
}

// merge overrides every field set in o.
func (s *settings) merge(o *Options) {
	if o.CircleSpiralThreshold != nil {
		s.layout.CircleSpiralThreshold = *o.CircleSpiralThreshold
	}
	if o.MinCircleRadius != nil {
		s.layout.MinCircleRadius = *o.MinCircleRadius
	}
	if o.MinSpiralAngularSeparation != nil {
		s.layout.MinSpiralAngularSeparation = *o.MinSpiralAngularSeparation
	}
	if o.SpiralDistanceFactor != nil {
		s.layout.SpiralDistanceFactor = *o.SpiralDistanceFactor
	}
	if o.SpiralAngleIncrement != nil {
		s.layout.SpiralAngleIncrement = *o.SpiralAngleIncrement
	}
	if o.ConnectorStyle != nil {
		s.stick = *o.ConnectorStyle
	}
	if o.ConnectorHoverStyle != nil {
		s.stickHover = *o.ConnectorHoverStyle
	}
	if o.OnPinSelected != nil {
		s.configured.Selected = o.OnPinSelected
	}
	if o.OnPinUnselected != nil {
		s.configured.Unselected = o.OnPinUnselected
	}
	if o.Visible != nil {
		s.visible = *o.Visible
	}
}

// LayoutOptions returns a partial configuration that sets every layout field
// from l. It is used to apply a fully resolved layout (from a config file or
// command line flags) to a controller.
func LayoutOptions(l layout.Options) *Options {
	return &Options{
		CircleSpiralThreshold:      Ptr(l.CircleSpiralThreshold),
		MinCircleRadius:            Ptr(l.MinCircleRadius),
		MinSpiralAngularSeparation: Ptr(l.MinSpiralAngularSeparation),
		SpiralDistanceFactor:       Ptr(l.SpiralDistanceFactor),
		SpiralAngleIncrement:       Ptr(l.SpiralAngleIncrement),
	}
}
