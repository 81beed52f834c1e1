package render

import (
	"bytes"
	"fmt"
	"html"
)

const (
	defaultMarkerRadius = 8.0
	defaultMarkerColor  = "#2a81cb"
	clusterColor        = "#f0a13c"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	labels     bool
	radius     float64
}

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithoutLabels omits marker labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithMarkerRadius sets the radius of proxy and plain markers in pixels.
// Cluster markers are drawn 1.5 times larger.
func WithMarkerRadius(radius float64) SVGOption {
	return func(r *svgRenderer) {
		if radius > 0 {
			r.radius = radius
		}
	}
}

// SVG renders s as a standalone SVG document in screen coordinates.
func SVG(s Scene, opts ...SVGOption) []byte {
	r := svgRenderer{labels: true, radius: defaultMarkerRadius}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	buf.WriteString(`  <g class="connectors">` + "\n")
	for _, l := range s.Lines {
		r.renderLine(&buf, l)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="markers">` + "\n")
	for _, m := range s.Markers {
		r.renderMarker(&buf, m)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderLine(buf *bytes.Buffer, l Line) {
	if len(l.Screen) < 2 {
		return
	}
	color, width := l.Color, l.Width
	if color == "" {
		color = "black"
	}
	if width <= 0 {
		width = 1
	}
	fmt.Fprintf(buf, `    <polyline id="%s" points="`, html.EscapeString(l.ID))
	for i, p := range l.Screen {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%.2f,%.2f", p[0], p[1])
	}
	fmt.Fprintf(buf, `" fill="none" stroke="%s" stroke-width="%.1f"/>`+"\n", html.EscapeString(color), width)
}

func (r *svgRenderer) renderMarker(buf *bytes.Buffer, m Marker) {
	radius, color := r.radius, m.Color
	if m.Kind == KindCluster {
		radius *= 1.5
		if color == "" {
			color = clusterColor
		}
	}
	if color == "" {
		color = defaultMarkerColor
	}

	fmt.Fprintf(buf, `    <g id="%s" class="marker %s" data-ref="%s">`+"\n",
		html.EscapeString(m.ID), m.Kind, html.EscapeString(m.Ref))
	fmt.Fprintf(buf, `      <circle cx="%.2f" cy="%.2f" r="%.1f" fill="%s" stroke="white" stroke-width="2"/>`+"\n",
		m.Screen[0], m.Screen[1], radius, html.EscapeString(color))
	if r.labels && m.Label != "" {
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="10">%s</text>`+"\n",
			m.Screen[0], m.Screen[1], html.EscapeString(m.Label))
	}
	buf.WriteString("    </g>\n")
}
