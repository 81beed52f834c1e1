package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spidermap/pkg/clusters"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/pipeline"
	"github.com/matzehuels/spidermap/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output     string   // output file path (or base path for multiple outputs)
	clusterID  string   // cluster to open; empty opens the first one
	formats    []string // output formats: "svg", "png", "json", "dot"
	noCache    bool     // disable caching
	refresh    bool     // ignore cached results
	center     string   // view center as "lon,lat"
	zoom       float64  // view zoom
	width      int      // view width in pixels
	height     int      // view height in pixels
	background string   // SVG background color
	noLabels   bool     // omit marker labels
	layout     layoutFlags
}

// renderCommand creates the render command for opening a cluster and writing
// the resulting scene.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [clusters.geojson]",
		Short: "Open a cluster and render the map",
		Long: `Open a cluster and render the map.

The input is a GeoJSON FeatureCollection of points. Points sharing a
"cluster_id" property form a cluster; points without one are drawn as plain
markers. The selected cluster is fanned out into a circle or spiral and the
map is written as SVG, PNG, GeoJSON (-f json) or Graphviz DOT.

Results are cached locally for faster subsequent runs.`,
		Example: `  spidermap render stations.geojson
  spidermap render stations.geojson --cluster c-3 -f svg,png
  spidermap render stations.geojson --zoom 17 --center 13.40,52.52 -o out.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			return c.runRender(cmd, args[0], &opts)
		},
	}

	def := c.Config.View
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&opts.clusterID, "cluster", "", "cluster to open (default: first cluster in the file)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().StringVar(&opts.center, "center", "", "view center as lon,lat (default: cluster center)")
	cmd.Flags().Float64Var(&opts.zoom, "zoom", def.Zoom, "view zoom level")
	cmd.Flags().IntVar(&opts.width, "width", def.Width, "view width in pixels")
	cmd.Flags().IntVar(&opts.height, "height", def.Height, "view height in pixels")
	cmd.Flags().StringVar(&opts.background, "background", "", "SVG background color")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "omit marker labels")
	opts.layout.register(cmd)

	return cmd
}

// runRender loads the input, opens the cluster, and writes every requested format.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	lo, err := opts.layout.apply(cmd, c.Config.Layout)
	if err != nil {
		return err
	}
	view, err := c.viewFromFlags(cmd, opts)
	if err != nil {
		return err
	}

	clusterID := opts.clusterID
	if clusterID == "" {
		if clusterID, err = firstCluster(data); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
		logger.Debug("no cluster given, opening the first", "cluster", clusterID)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Opening %s...", clusterID))
	spin.Start()

	result, err := runner.Execute(ctx, pipeline.Options{
		Input:          data,
		Source:         input,
		ClusterID:      clusterID,
		View:           &view,
		Layout:         lo,
		Connector:      c.Config.Connector,
		ConnectorHover: c.Config.ConnectorHover,
		Formats:        opts.formats,
		Background:     opts.background,
		NoLabels:       opts.noLabels,
		Refresh:        opts.refresh,
		Logger:         logger,
	})
	if err != nil {
		spin.Fail(fmt.Sprintf("Could not open %s", clusterID))
		return err
	}
	if spin.Cancelled() {
		spin.Stop()
		return ctx.Err()
	}

	spin.SetStage(fmt.Sprintf("Writing %s...", strings.Join(opts.formats, ", ")))
	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, input)
	spin.Stop()
	if err != nil {
		return err
	}

	printSuccess("Opened %s as a %s", clusterID, result.Mode)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Clusters, result.Stats.Members, result.CacheInfo.RenderHit)
	printNewline()
	printNextStep("Explore", "spidermap explore "+input)
	return nil
}

// viewFromFlags starts from the configured view and applies the view flags.
func (c *CLI) viewFromFlags(cmd *cobra.Command, opts *renderOpts) (mapview.View, error) {
	v := c.Config.View
	flags := cmd.Flags()
	if flags.Changed("zoom") {
		v.Zoom = opts.zoom
	}
	if flags.Changed("width") {
		v.Width = opts.width
	}
	if flags.Changed("height") {
		v.Height = opts.height
	}
	if opts.center != "" {
		p, err := parseCenter(opts.center)
		if err != nil {
			return v, err
		}
		v.Center = p
	}
	return v, nil
}

// parseCenter parses "lon,lat".
func parseCenter(s string) (orb.Point, error) {
	lon, lat, ok := strings.Cut(s, ",")
	if !ok {
		return orb.Point{}, fmt.Errorf("invalid center %q (want lon,lat)", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid center longitude %q: %w", lon, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("invalid center latitude %q: %w", lat, err)
	}
	return orb.Point{x, y}, nil
}

func firstCluster(data []byte) (string, error) {
	set, err := clusters.Parse(data)
	if err != nil {
		return "", err
	}
	if len(set.Groups) == 0 {
		return "", fmt.Errorf("no clusters found")
	}
	return set.Groups[0].ID, nil
}

// fileExt returns the file extension for a format.
func fileExt(format string) string {
	if format == render.FormatJSON {
		return "geojson"
	}
	return format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input and appends ".spider"
// so that GeoJSON output never replaces the input file.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input)) + ".spider"
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	for _, f := range render.Formats {
		if ext == fileExt(f) {
			return strings.TrimSuffix(output, filepath.Ext(output))
		}
	}
	return output
}

// outputPaths maps each format to its file. A single format with an explicit
// output is written to that exact path.
func outputPaths(formats []string, output, input string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + fileExt(f)
	}
	return paths
}

func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	paths := outputPaths(formats, output, input)
	written := make([]string, 0, len(formats))
	for _, f := range formats {
		path := paths[f]
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
