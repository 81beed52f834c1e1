// Package spider expands map clusters into a selectable "spider" layout.
//
// A [Controller] owns at most one open cluster. When a cluster is activated
// it asks [layout.Compute] for one offset per member, converts the offsets
// from screen pixels to geographic coordinates through the host's
// [Projector], draws a proxy marker and a connector line for every member and
// hides the original cluster marker. Clicking the map background, starting a
// view change, clicking a proxy or activating another cluster collapses the
// layout again and restores the cluster marker.
//
// # Host
//
// The controller never draws anything itself. It is wired to a map widget
// through the [Host] interface (projection, primitive creation and event
// subscription) and to the widget's cluster layer through [ClusterLayer].
// All handlers run synchronously on the host's event loop; the controller
// holds no locks and must not be shared across goroutines.
//
// # Usage
//
//	ctrl := spider.New(host, layer,
//	    spider.WithLogger(logger),
//	    spider.WithOptions(&spider.Options{
//	        OnPinSelected: func(m *spider.Member, c *spider.Cluster) {
//	            fmt.Println("selected", m.ID)
//	        },
//	    }),
//	)
//	defer ctrl.Dispose()
//
// Additional observers can be registered with [Controller.AddListener].
package spider
