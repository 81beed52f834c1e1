package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spidermap/pkg/buildinfo"
	"github.com/matzehuels/spidermap/pkg/cache"
	"github.com/matzehuels/spidermap/pkg/config"
	"github.com/matzehuels/spidermap/pkg/pipeline"
	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "spidermap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is set by --config. Empty means the default location.
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Spidermap fans out clustered map markers",
		Long:         `Spidermap opens clusters of map markers into circles and spirals so that every member can be seen and picked, and renders the result as SVG, PNG, GeoJSON or DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/spidermap/config.toml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and environment overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.LoadOrDefault(c.ConfigPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", c.ConfigPath, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, c.Config.Cache.Keyer(), c.Logger)
	runner.TTL = c.Config.Cache.TTL
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(cache.ReasonFlag), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return c.Config.Cache.Open(ctx, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/spidermap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	return strings.Split(s, ",")
}

// layoutFlags binds the layout tuning flags shared by several commands.
// Flags override the config file only when set on the command line.
type layoutFlags struct {
	threshold  int
	minRadius  float64
	separation float64
	factor     float64
	increment  float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	def := layout.DefaultOptions()
	cmd.Flags().IntVar(&f.threshold, "threshold", def.CircleSpiralThreshold, "largest cluster drawn as a circle")
	cmd.Flags().Float64Var(&f.minRadius, "min-radius", def.MinCircleRadius, "minimum circle leg length in pixels")
	cmd.Flags().Float64Var(&f.separation, "separation", def.MinSpiralAngularSeparation, "spiral separation between neighbours")
	cmd.Flags().Float64Var(&f.factor, "factor", def.SpiralDistanceFactor, "spiral growth factor")
	cmd.Flags().Float64Var(&f.increment, "increment", def.SpiralAngleIncrement, "spiral angle increment per member")
}

// apply returns base with every flag that was set on cmd.
func (f *layoutFlags) apply(cmd *cobra.Command, base layout.Options) (layout.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		base.CircleSpiralThreshold = f.threshold
	}
	if flags.Changed("min-radius") {
		base.MinCircleRadius = f.minRadius
	}
	if flags.Changed("separation") {
		base.MinSpiralAngularSeparation = f.separation
	}
	if flags.Changed("factor") {
		base.SpiralDistanceFactor = f.factor
	}
	if flags.Changed("increment") {
		base.SpiralAngleIncrement = f.increment
	}
	if err := base.Validate(); err != nil {
		return base, fmt.Errorf("layout flags: %w", err)
	}
	return base, nil
}
