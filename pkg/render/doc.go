// Package render turns a map scene snapshot into output artifacts.
//
// # Overview
//
// A [Scene] is a flat, serializable description of what a map currently
// shows: visible markers (cluster markers, spider proxies and plain markers)
// and connector lines, each with both geographic and screen coordinates.
// The in-memory map in package mapview produces scenes; this package has no
// knowledge of the spider controller.
//
// # Sinks
//
//   - [SVG]: a standalone SVG document drawn from screen coordinates
//   - [GeoJSON]: a FeatureCollection drawn from geographic coordinates,
//     using simplestyle properties for colors
//   - [ToDOT]: a Graphviz graph with pinned node positions, which
//     [DOTToSVG] and [DOTToPNG] lay out with neato
//
// [Render] dispatches on a format name and is what the pipeline and the
// HTTP API call:
//
//	data, err := render.Render(ctx, scene, render.FormatSVG)
package render
