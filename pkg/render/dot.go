package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/paulmach/orb"
)

// ToDOT converts s to a Graphviz graph whose nodes are pinned at their
// screen positions. Graphviz's y axis points up, so y is mirrored against
// the scene height. Connector end points become invisible point nodes.
func ToDOT(s Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	fmt.Fprintf(&buf, "  bb=\"0,0,%d,%d\";\n", s.Width, s.Height)
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, width=0.3, fontsize=8, fontname=\"sans-serif\"];\n")
	buf.WriteString("\n")

	for _, l := range s.Lines {
		if len(l.Screen) < 2 {
			continue
		}
		from, to := l.ID+"/a", l.ID+"/b"
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.01, %s];\n", from, pos(s, l.Screen[0]))
		fmt.Fprintf(&buf, "  %q [shape=point, width=0.01, %s];\n", to, pos(s, l.Screen[len(l.Screen)-1]))
		attrs := []string{}
		if l.Color != "" {
			attrs = append(attrs, fmt.Sprintf("color=%q", l.Color))
		}
		if l.Width > 0 {
			attrs = append(attrs, fmt.Sprintf("penwidth=%s", fmtFloat(l.Width)))
		}
		fmt.Fprintf(&buf, "  %q -- %q [%s];\n", from, to, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, m := range s.Markers {
		fmt.Fprintf(&buf, "  %q [%s];\n", m.ID, strings.Join(markerAttrs(s, m), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func markerAttrs(s Scene, m Marker) []string {
	color := m.Color
	if color == "" {
		color = defaultMarkerColor
		if m.Kind == KindCluster {
			color = clusterColor
		}
	}
	attrs := []string{
		fmt.Sprintf("label=%q", m.Label),
		fmt.Sprintf("fillcolor=%q", color),
		pos(s, m.Screen),
	}
	if m.Kind == KindCluster {
		attrs = append(attrs, "width=0.45", "penwidth=2")
	}
	return attrs
}

func pos(s Scene, p orb.Point) string {
	return fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(p[0]), fmtFloat(float64(s.Height)-p[1]))
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// DOTToSVG lays out dot with neato, keeping pinned positions, and renders it
// to SVG.
func DOTToSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// DOTToPNG lays out dot with neato and renders it to PNG.
func DOTToPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
