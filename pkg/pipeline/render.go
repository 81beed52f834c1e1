package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/spidermap/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, s render.Scene, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		if format == render.FormatSVG {
			data = render.SVG(s, svgOptions(opts)...)
		} else {
			data, err = render.Render(ctx, s, format)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []render.SVGOption {
	var out []render.SVGOption
	if opts.Background != "" {
		out = append(out, render.WithBackground(opts.Background))
	}
	if opts.NoLabels {
		out = append(out, render.WithoutLabels())
	}
	return out
}
