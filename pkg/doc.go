// Package pkg provides the core libraries for spidermap.
//
// # Overview
//
// Spidermap fans out a cluster of map markers into a circle or spiral of
// proxy markers, each tied to the cluster center by a connector line, so
// that every member can be seen and picked. The pkg directory is organized
// as follows:
//
//  1. [spider/layout] - Pure placement math (circle and spiral offsets)
//  2. [spider] - The controller that opens and collapses clusters on a host map
//  3. [mapview] - An in-memory host map with a Web Mercator view
//  4. [clusters] - Pre-clustered points read from GeoJSON
//  5. [render] - SVG, PNG, GeoJSON and DOT output of a map snapshot
//  6. [pipeline] - Orchestration (load → open → render) with caching
//  7. [cache], [config], [errors], [observability] - Supporting infrastructure
//
// # Architecture
//
// The typical data flow through spidermap:
//
//	GeoJSON FeatureCollection
//	         ↓
//	    [clusters] package (group points by cluster_id)
//	         ↓
//	    [mapview] package (draw clusters and singles)
//	         ↓
//	    [spider] package (open one cluster)
//	         ↓
//	    [render] package (snapshot → SVG/PNG/GeoJSON/DOT)
//
// # Quick Start
//
// Open a cluster on a map and react to picks:
//
//	m := mapview.New(mapview.View{Center: center, Zoom: 15, Width: 800, Height: 600})
//	set.AddTo(m)
//
//	ctrl := spider.New(m, m.ClusterLayer())
//	ctrl.AddListener(spider.ListenerFuncs{
//	    Selected: func(mem *spider.Member, cl *spider.Cluster) {
//	        fmt.Println("picked", mem.ID)
//	    },
//	})
//	m.ClickMarker(m.Clusters()[0].Marker)
//
// Or run the whole pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     data,
//	    ClusterID: "stations",
//	    Formats:   []string{"svg"},
//	})
package pkg
