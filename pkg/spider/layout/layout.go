package layout

import (
	"fmt"
	"math"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultCircleSpiralThreshold is the largest member count drawn as a circle.
	DefaultCircleSpiralThreshold = 9

	// DefaultMinCircleRadius is the minimum circle leg length in pixels.
	DefaultMinCircleRadius = 30.0

	// DefaultMinSpiralAngularSeparation is the spiral separation scalar.
	// It is divided by the current leg length (px) to get the angular step in
	// radians, so it behaves like a minimum arc length between neighbours.
	DefaultMinSpiralAngularSeparation = 25.0

	// DefaultSpiralDistanceFactor controls how fast the spiral radius grows.
	DefaultSpiralDistanceFactor = 5.0

	// DefaultSpiralAngleIncrement is added per member index to the spiral
	// angle step so the angle keeps advancing once legs grow long.
	DefaultSpiralAngleIncrement = 0.0005
)

// =============================================================================
// Mode
// =============================================================================

// Mode identifies the arrangement used for a cluster.
type Mode string

const (
	ModeCircle Mode = "circle"
	ModeSpiral Mode = "spiral"
)

// =============================================================================
// Options
// =============================================================================

// Options configures the layout. Use [DefaultOptions] as a starting point.
type Options struct {
	CircleSpiralThreshold      int     `json:"circle_spiral_threshold" toml:"circle_spiral_threshold"`
	MinCircleRadius            float64 `json:"min_circle_radius" toml:"min_circle_radius"`
	MinSpiralAngularSeparation float64 `json:"min_spiral_angular_separation" toml:"min_spiral_angular_separation"`
	SpiralDistanceFactor       float64 `json:"spiral_distance_factor" toml:"spiral_distance_factor"`
	SpiralAngleIncrement       float64 `json:"spiral_angle_increment" toml:"spiral_angle_increment"`
}

// DefaultOptions returns the reference layout options.
func DefaultOptions() Options {
	return Options{
		CircleSpiralThreshold:      DefaultCircleSpiralThreshold,
		MinCircleRadius:            DefaultMinCircleRadius,
		MinSpiralAngularSeparation: DefaultMinSpiralAngularSeparation,
		SpiralDistanceFactor:       DefaultSpiralDistanceFactor,
		SpiralAngleIncrement:       DefaultSpiralAngleIncrement,
	}
}

// Validate reports whether the options can produce a usable layout.
func (o Options) Validate() error {
	if o.CircleSpiralThreshold < 0 {
		return fmt.Errorf("circle/spiral threshold must be >= 0, got %d", o.CircleSpiralThreshold)
	}
	if o.MinCircleRadius <= 0 {
		return fmt.Errorf("min circle radius must be positive, got %g", o.MinCircleRadius)
	}
	if o.MinSpiralAngularSeparation <= 0 {
		return fmt.Errorf("min spiral angular separation must be positive, got %g", o.MinSpiralAngularSeparation)
	}
	if o.SpiralDistanceFactor <= 0 {
		return fmt.Errorf("spiral distance factor must be positive, got %g", o.SpiralDistanceFactor)
	}
	if o.SpiralAngleIncrement < 0 {
		return fmt.Errorf("spiral angle increment must be >= 0, got %g", o.SpiralAngleIncrement)
	}
	return nil
}

// ModeFor returns the arrangement used for n members.
func ModeFor(n int, opts Options) Mode {
	if n > opts.CircleSpiralThreshold {
		return ModeSpiral
	}
	return ModeCircle
}

// =============================================================================
// Placement
// =============================================================================

// Placement is the offset of one member from the cluster centroid, in pixels.
// Angle is the accumulated angle in radians (not wrapped to 2π) and Length the
// leg length used to produce DX and DY.
type Placement struct {
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Angle  float64 `json:"angle"`
	Length float64 `json:"length"`
}

// Radius returns the distance of the placement from the centroid.
func (p Placement) Radius() float64 { return math.Hypot(p.DX, p.DY) }

func polar(length, angle float64) Placement {
	return Placement{
		DX:     length * math.Cos(angle),
		DY:     length * math.Sin(angle),
		Angle:  angle,
		Length: length,
	}
}

// =============================================================================
// Compute
// =============================================================================

// Compute returns n placements for a cluster of n members. Placement i belongs
// to member i. It returns nil when n < 1.
func Compute(n int, opts Options) []Placement {
	if n < 1 {
		return nil
	}
	if ModeFor(n, opts) == ModeSpiral {
		return spiral(n, opts)
	}
	return circle(n, opts)
}

// CircleLength returns the leg length of a circular layout with n members.
// A single member still gets a full-length leg.
func CircleLength(n int, opts Options) float64 {
	step := 2 * math.Pi / float64(n)
	length := (opts.SpiralDistanceFactor / step / (2 * math.Pi)) * float64(n)
	return math.Max(opts.MinCircleRadius, length)
}

func circle(n int, opts Options) []Placement {
	step := 2 * math.Pi / float64(n)
	length := CircleLength(n, opts)

	out := make([]Placement, n)
	for i := range out {
		out[i] = polar(length, step*float64(i))
	}
	return out
}

func spiral(n int, opts Options) []Placement {
	length := opts.MinCircleRadius / math.Pi
	stepLength := 2 * math.Pi * opts.SpiralDistanceFactor
	angle := 0.0

	out := make([]Placement, n)
	for i := range out {
		angle += opts.MinSpiralAngularSeparation/length + float64(i)*opts.SpiralAngleIncrement
		length += stepLength / angle
		out[i] = polar(length, angle)
	}
	return out
}
