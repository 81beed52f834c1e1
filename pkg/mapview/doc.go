// Package mapview is an in-memory map widget that hosts a spider controller
// outside a browser.
//
// A [Map] keeps markers and lines keyed by opaque uuid handles, projects
// between WGS84 and screen pixels with the spherical Web Mercator projection
// used by tiled web maps (256 px tiles), and delivers events synchronously to
// subscribers. Pointer input is simulated with [Map.ClickAt], [Map.HoverAt],
// [Map.ClickMarker], [Map.Hover], [Map.Pan] and [Map.ZoomBy]; the resulting
// picture is captured with [Map.Snapshot].
//
// The map never clusters points itself. Clusters are added explicitly with
// [Map.AddCluster], typically from the groups read by package clusters.
package mapview
