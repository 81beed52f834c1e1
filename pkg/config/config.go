// Package config loads spidermap settings from a TOML file.
//
// A complete file looks like:
//
//	[layout]
//	circle_spiral_threshold = 9
//	min_circle_radius = 30.0
//	min_spiral_angular_separation = 25.0
//	spiral_distance_factor = 5.0
//	spiral_angle_increment = 0.0005
//
//	[connector]
//	color = "black"
//	width = 2.0
//
//	[connector_hover]
//	color = "red"
//	width = 2.0
//
//	[view]             # a missing center follows the opened cluster
//	center = [13.4, 52.5]
//	zoom = 15.0
//	width = 800
//	height = 600
//
//	[cache]
//	backend = "file"   # file, none, redis or mongo
//	ttl = "720h"
//	redis_addr = "localhost:6379"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "spidermap"
//	key_prefix = "staging:" # isolates environments sharing a backend
//
//	[server]
//	addr = ":8080"
//
// Every key is optional; missing keys keep their defaults. Unknown keys are
// rejected so typos do not go unnoticed.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spidermap/pkg/cache"
	"github.com/matzehuels/spidermap/pkg/errors"
	"github.com/matzehuels/spidermap/pkg/mapview"
	"github.com/matzehuels/spidermap/pkg/pipeline"
	"github.com/matzehuels/spidermap/pkg/spider"
	"github.com/matzehuels/spidermap/pkg/spider/layout"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendNone  = "none"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Environment variables that override the file.
const (
	EnvCacheBackend = "SPIDERMAP_CACHE_BACKEND"
	EnvRedisAddr    = "SPIDERMAP_REDIS_ADDR"
	EnvMongoURI     = "SPIDERMAP_MONGO_URI"
)

// Config is the full configuration.
type Config struct {
	Layout         layout.Options   `toml:"layout"`
	Connector      spider.LineStyle `toml:"connector"`
	ConnectorHover spider.LineStyle `toml:"connector_hover"`
	View           mapview.View     `toml:"view"`
	Cache          CacheConfig      `toml:"cache"`
	Server         ServerConfig     `toml:"server"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	KeyPrefix     string        `toml:"key_prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout:         layout.DefaultOptions(),
		Connector:      spider.DefaultConnectorStyle,
		ConnectorHover: spider.DefaultConnectorHoverStyle,
		View:           mapview.View{Zoom: pipeline.DefaultZoom, Width: 800, Height: 600},
		Cache: CacheConfig{
			Backend:       BackendFile,
			TTL:           cache.TTLArtifact,
			MongoDatabase: cache.DefaultMongoDatabase,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/spidermap/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "spidermap", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "spidermap", "config.toml"), nil
}

// Load reads path on top of [Default] and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidOptions, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it is set. With an empty path it loads the
// file at [DefaultPath] if one exists and otherwise returns [Default].
func LoadOrDefault(path string) (Config, error) {
	if path != "" {
		return Load(path)
	}
	def, err := DefaultPath()
	if err != nil {
		return Default(), nil
	}
	if _, err := os.Stat(def); err != nil {
		return Default(), nil
	}
	return Load(def)
}

// ApplyEnv overrides cache settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Cache.MongoURI = v
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "layout")
	}
	for name, s := range map[string]spider.LineStyle{"connector": c.Connector, "connector_hover": c.ConnectorHover} {
		if s.Color == "" || s.Width <= 0 {
			return errors.New(errors.ErrCodeInvalidOptions, "%s needs a color and a positive width", name)
		}
	}
	if err := c.View.Validate(); err != nil {
		return err
	}
	return c.Cache.Validate()
}

// Validate checks the backend selection.
func (c CacheConfig) Validate() error {
	switch c.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidOptions, "cache backend redis needs redis_addr")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidOptions, "cache backend mongo needs mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q", c.Backend)
	}
	if c.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "cache ttl must not be negative")
	}
	return nil
}

// SpiderOptions returns the controller settings described by c.
func (c Config) SpiderOptions() *spider.Options {
	o := spider.LayoutOptions(c.Layout)
	o.ConnectorStyle = spider.Ptr(c.Connector)
	o.ConnectorHoverStyle = spider.Ptr(c.ConnectorHover)
	return o
}

// Keyer returns the cache key builder, scoped by KeyPrefix when set.
func (c CacheConfig) Keyer() cache.Keyer {
	if c.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.KeyPrefix)
}

// Open creates the configured cache. fileDir is used by the file backend.
func (c CacheConfig) Open(ctx context.Context, fileDir string) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(cache.ReasonBackend), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.RedisAddr})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{URI: c.MongoURI, Database: c.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return mc, nil
	case BackendFile, "":
		if fileDir == "" {
			return cache.NewNullCache(cache.ReasonNoDir), nil
		}
		fc, err := cache.NewFileCache(fileDir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
