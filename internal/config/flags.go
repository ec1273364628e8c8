package config

import "flag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config   string
	Debug    bool
	Strategy string
	Flat     bool
	Workers  int
	Out      string
	Format   string
}

// Register binds the override flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Strategy, "strategy", "", "Meshing strategy")
	fs.BoolVar(&f.Flat, "flat", false, "Skip textures, one color per triangle")
	fs.IntVar(&f.Workers, "workers", 0, "Concurrent plane workers (0 = config)")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.StringVar(&f.Format, "format", "", "Atlas image format (png, webp, tga, bmp, tiff)")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Strategy != "" {
		cfg.Mesh.Strategy = f.Strategy
	}
	if f.Flat {
		cfg.Texture.Enabled = false
	}
	if f.Workers > 0 {
		cfg.Mesh.Workers = f.Workers
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Format != "" {
		cfg.Output.ImageFormat = f.Format
	}
}
