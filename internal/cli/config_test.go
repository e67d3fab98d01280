package cli

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/daygrid/daygrid/pkg/errors"
	"github.com/daygrid/daygrid/pkg/grid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Geometry != grid.DefaultGeometry() {
		t.Errorf("Geometry = %+v, want defaults", cfg.Geometry)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.Workers != 1 {
		t.Errorf("Server.Workers = %d", cfg.Server.Workers)
	}
	if cfg.Cache.Backend != "none" {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "daygrid.toml"), false)
	if err != nil {
		t.Fatalf("missing default config should fall back: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("fallback not normalized: %+v", cfg.Server)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"), true)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daygrid.toml")
	doc := `
[geometry]
cell_width = 200.0
cell_height = 100.0
padding = 2.0
columns = 7
lane_limit = 4
min_event_height = 10.0

[thresholds]
low_max = 1
medium_max = 4

[server]
addr = ":9090"
workers = 3

[cache]
backend = "memory"

[[feed]]
path = "team.ics"
refresh = "*/15 * * * *"
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Geometry.CellWidth != 200 || cfg.Geometry.LaneLimit != 4 {
		t.Errorf("geometry = %+v", cfg.Geometry)
	}
	if cfg.Thresholds.LowMax != 1 || cfg.Thresholds.MediumMax != 4 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.Workers != 3 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Refresh == "" {
		t.Errorf("feeds = %+v", cfg.Feeds)
	}
}

func TestLoadConfigBadBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daygrid.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"tape\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path, true)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daygrid.toml")
	if err := os.WriteFile(path, []byte("geometry = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path, true)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}
