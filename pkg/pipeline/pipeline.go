// Package pipeline provides the load → open → render pipeline for spidermap.
//
// The pipeline reads pre-clustered points from GeoJSON, draws them on a
// [mapview.Map], opens one cluster with a [spider.Controller] and renders the
// resulting scene. The CLI and the HTTP API both run it through a [Runner] so
// that caching and logging behave the same everywhere.
//
// # Stages
//
//  1. Load: parse the FeatureCollection into cluster groups
//  2. Scene: open the requested cluster and snapshot the map
//  3. Render: produce SVG, PNG, GeoJSON or DOT from the scene
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:     data,
//	    ClusterID: "stations",
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/matzehuels/spidermap/pkg/cache"
	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// DefaultZoom is the zoom used when no view is given. The view is then
// centered on the opened cluster.
const DefaultZoom = 15.0

// Options configures one pipeline run.
type Options struct {
	// Input is the GeoJSON FeatureCollection to load.
	Input []byte `json:"-"`

	// Source names the input in logs, usually its path.
	Source string `json:"source,omitempty"`

	// ClusterID selects the cluster to open.
	ClusterID string `json:"cluster_id"`

	// View is the map window. A view with a zero Center is centered on the
	// opened cluster; nil also uses the default size and [DefaultZoom].
	View *mapview.View `json:"view,omitempty"`

	Layout         layout.Options   `json:"layout"`
	Connector      spider.LineStyle `json:"connector"`
	ConnectorHover spider.LineStyle `json:"connector_hover"`

	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	NoLabels   bool     `json:"no_labels,omitempty"`

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the map after the cluster was opened.
	Scene render.Scene

	// SceneHash is the content hash of the encoded scene.
	SceneHash string

	// Mode is the arrangement used for the cluster.
	Mode layout.Mode

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Clusters   int
	Members    int
	LoadTime   time.Duration
	SceneTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	SceneHit  bool // Whether the scene came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if err := errors.ValidateClusterID(o.ClusterID); err != nil {
		return err
	}
	if o.Source == "" {
		o.Source = "input"
	}
	if o.Layout == (layout.Options{}) {
		o.Layout = layout.DefaultOptions()
	}
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "layout")
	}
	if o.Connector == (spider.LineStyle{}) {
		o.Connector = spider.DefaultConnectorStyle
	}
	if o.ConnectorHover == (spider.LineStyle{}) {
		o.ConnectorHover = spider.DefaultConnectorHoverStyle
	}
	if o.View != nil {
		if err := o.View.Validate(); err != nil {
			return err
		}
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if err := errors.ValidateFormats(o.Formats, render.Formats...); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	o.validated = true
	return nil
}

// SpiderOptions returns the controller settings described by o.
func (o *Options) SpiderOptions() *spider.Options {
	so := spider.LayoutOptions(o.Layout)
	so.ConnectorStyle = spider.Ptr(o.Connector)
	so.ConnectorHoverStyle = spider.Ptr(o.ConnectorHover)
	return so
}

// viewFor returns the view to open a cluster at center in.
func (o *Options) viewFor(center orb.Point) mapview.View {
	v := mapview.DefaultView()
	v.Zoom = DefaultZoom
	if o.View != nil {
		v = *o.View
	}
	if v.Center == (orb.Point{}) {
		v.Center = center
	}
	return v
}

// SceneKeyOpts returns cache key options for the scene shown in v.
func (o *Options) SceneKeyOpts(v mapview.View) cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		ClusterID: o.ClusterID,
		Center:    [2]float64(v.Center),
		Zoom:      v.Zoom,
		Width:     v.Width,
		Height:    v.Height,
		Layout:    o.Layout,
		Connector: fmt.Sprintf("%s/%g", o.Connector.Color, o.Connector.Width),
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Background: o.Background,
		NoLabels:   o.NoLabels,
	}
}

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
