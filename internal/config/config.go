// Package config handles export configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/voxmesh/internal/imageio"
	"github.com/Faultbox/voxmesh/pkg/mesh"
)

// TriangulateStrategy names the polygon triangulation backend, which lives
// outside the mesh package.
const TriangulateStrategy = "triangulate"

// Config holds all export settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh" toml:"mesh"`
	Texture TextureConfig `yaml:"texture" toml:"texture"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// MeshConfig controls how planes are turned into triangles.
type MeshConfig struct {
	Strategy     string `yaml:"strategy" toml:"strategy"`
	GroupByLayer bool   `yaml:"group_by_layer" toml:"group_by_layer"`
	Workers      int    `yaml:"workers" toml:"workers"` // 0 = GOMAXPROCS
}

// TextureConfig controls texture extraction and atlas packing.
type TextureConfig struct {
	Enabled  bool    `yaml:"enabled" toml:"enabled"` // false = one flat color per triangle
	Compress bool    `yaml:"compress" toml:"compress"`
	Padding  bool    `yaml:"padding" toml:"padding"`
	UVNudge  float64 `yaml:"uv_nudge" toml:"uv_nudge"`
}

// OutputConfig holds output locations.
type OutputConfig struct {
	Dir         string `yaml:"dir" toml:"dir"`
	ImageFormat string `yaml:"image_format" toml:"image_format"`
	WriteTables bool   `yaml:"write_tables" toml:"write_tables"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			Strategy:     "optimal",
			GroupByLayer: true,
		},
		Texture: TextureConfig{
			Enabled:  true,
			Compress: true,
			Padding:  false,
			UVNudge:  0.01,
		},
		Output: OutputConfig{
			Dir:         "out",
			ImageFormat: "png",
			WriteTables: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Strategies lists every accepted mesh strategy name.
func Strategies() []string {
	return append(mesh.Names(), TriangulateStrategy)
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	s := strings.ToLower(c.Mesh.Strategy)
	if _, ok := mesh.Lookup(s); !ok && s != TriangulateStrategy {
		return fmt.Errorf("unknown strategy %q (want one of %s)", c.Mesh.Strategy, strings.Join(Strategies(), ", "))
	}
	if c.Mesh.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Mesh.Workers)
	}
	if c.Texture.UVNudge < 0 || c.Texture.UVNudge >= 0.5 {
		return fmt.Errorf("uv_nudge must be in [0, 0.5), got %g", c.Texture.UVNudge)
	}
	if _, err := imageio.ParseFormat(c.Output.ImageFormat); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
