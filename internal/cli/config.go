package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/daygrid/daygrid/pkg/cache"
	"github.com/daygrid/daygrid/pkg/conflict"
	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/grid"
)

// Config is the daygrid.toml file shape shared by all commands.
type Config struct {
	Geometry   grid.Geometry       `toml:"geometry"`
	Thresholds conflict.Thresholds `toml:"thresholds"`
	Server     ServerConfig        `toml:"server"`
	Cache      CacheConfig         `toml:"cache"`
	Feeds      []FeedConfig        `toml:"feed"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Workers int    `toml:"workers"`
}

// CacheConfig selects the result cache backend for serve.
type CacheConfig struct {
	// Backend is one of "none", "memory", "file", "redis".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Defaults to the XDG cache dir.
	Dir string `toml:"dir"`

	// Namespace prefixes cache keys, isolating deployments that share
	// one backend. Empty means no prefix.
	Namespace string `toml:"namespace"`

	Redis cache.RedisConfig `toml:"redis"`
}

// FeedConfig names an event source for serve's scheduled refresh.
type FeedConfig struct {
	Path string `toml:"path"`

	// Refresh is a cron spec; empty disables scheduled refresh for
	// this feed.
	Refresh string `toml:"refresh"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Normalize()
	return cfg
}

// LoadConfig reads a TOML config file and fills in defaults. A missing
// file is not an error when path is the default location; explicit
// paths must exist.
func LoadConfig(path string, explicit bool) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if explicit {
			return cfg, apperrors.New(apperrors.ErrCodeInvalidConfig, "config file %s does not exist", path)
		}
		return DefaultConfig(), nil
	}
	if err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Geometry == (grid.Geometry{}) {
		c.Geometry = grid.DefaultGeometry()
	} else {
		c.Geometry.Normalize()
	}
	if c.Thresholds == (conflict.Thresholds{}) {
		c.Thresholds = conflict.DefaultThresholds
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Workers < 1 {
		c.Server.Workers = 1
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "none"
	}
}

// Validate checks the normalized config.
func (c *Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case "none", "memory", "file", "redis":
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
