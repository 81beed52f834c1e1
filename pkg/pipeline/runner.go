package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spidermap/pkg/cache"
	"github.com/matzehuels/spidermap/pkg/clusters"
	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/observability"
	"github.com/matzehuels/spidermap/pkg/render"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Cache key types reported to observability hooks.
const (
	keyTypeScene    = "scene"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can use the same Runner with different options; every run
// builds its own map and controller.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache(cache.ReasonUnset)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → open → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Source)
	set, err := Load(opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if set != nil {
		result.Stats.Clusters = len(set.Groups)
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Source, result.Stats.Clusters, result.Stats.LoadTime, err)
	if err != nil {
		return nil, err
	}
	if g, ok := set.Group(opts.ClusterID); ok {
		result.Stats.Members = len(g.Members)
	}

	r.Logger.Info("loaded clusters",
		"source", opts.Source,
		"clusters", result.Stats.Clusters,
		"singles", len(set.Singles),
		"duration", result.Stats.LoadTime)

	// Stage 2: Scene
	sceneStart := time.Now()
	scene, mode, sceneHit, err := r.SceneWithCacheInfo(ctx, set, opts)
	if err != nil {
		return nil, err
	}
	result.Scene = scene
	result.Mode = mode
	result.Stats.SceneTime = time.Since(sceneStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Info("opened cluster",
		"cluster", opts.ClusterID,
		"members", result.Stats.Members,
		"mode", mode,
		"duration", result.Stats.SceneTime)

	// Stage 3: Render
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, sceneHash, renderHit, err := r.RenderWithCacheInfo(ctx, scene, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.SceneHash = sceneHash
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// cachedScene is the cache encoding of a scene.
type cachedScene struct {
	Mode  layout.Mode  `json:"mode"`
	Scene render.Scene `json:"scene"`
}

// SceneWithCacheInfo opens the requested cluster of set with caching and
// returns cache hit info.
func (r *Runner) SceneWithCacheInfo(ctx context.Context, set *clusters.Set, opts Options) (render.Scene, layout.Mode, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return render.Scene{}, "", false, err
	}

	g, ok := set.Group(opts.ClusterID)
	if !ok {
		return render.Scene{}, "", false, errors.New(errors.ErrCodeClusterNotFound, "cluster %q not found", opts.ClusterID)
	}
	view := opts.viewFor(g.Center)
	cacheKey := r.Keyer.SceneKey(cache.Hash(opts.Input), opts.SceneKeyOpts(view))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedScene
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeScene)
				return cached.Scene, cached.Mode, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeScene)
	}

	scene, mode, err := BuildScene(set, opts)
	if err != nil {
		return render.Scene{}, "", false, err
	}

	if data, err := json.Marshal(cachedScene{Mode: mode, Scene: scene}); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLScene)); err != nil {
			r.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeScene, len(data))
		}
	}
	return scene, mode, false, nil
}

// RenderWithCacheInfo generates artifacts with caching. It returns the scene
// hash used for the artifact keys and whether every format came from cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s render.Scene, opts Options) (map[string][]byte, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, "", false, err
	}

	sceneData, err := json.Marshal(s)
	if err != nil {
		return nil, "", false, err
	}
	sceneHash := cache.Hash(sceneData)

	// Try to get all formats from cache
	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
				break
			}
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, sceneHash, true, nil
		}
	}

	rendered, err := Render(ctx, s, opts)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLArtifact)); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
	}
	return rendered, sceneHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
