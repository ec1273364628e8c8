// voxmesh converts voxel lists into textured triangle meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/export"
	"github.com/Faultbox/voxmesh/internal/imageio"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/internal/voxel"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "mesh", "m":
		cmdMesh(args)
	case "stats":
		cmdStats(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`voxmesh - voxel surface mesher and texture atlas packer

Usage:
  voxmesh <command> [options]

Commands:
  mesh [options] <voxels>    Mesh a voxel list, write tables and atlases
  stats [options] <voxels>   Compare triangle counts of every strategy
  config [path]              Write the default config file

Voxel files hold one "x y z color [layer]" line per voxel; .zst and .sz
files are decompressed on the fly.

Strategies: %s

Examples:
  voxmesh mesh -strategy optimal -out build model.txt
  voxmesh mesh -flat -strategy greedy model.txt.zst
  voxmesh stats model.txt
`, strings.Join(config.Strategies(), ", "))
}

// setup parses flags, loads the config and starts logging.
func setup(name string, args []string) (*config.Config, []string) {
	var flags config.Flags
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags.Register(fs)
	fs.Parse(args)

	cfg, err := config.Load(&flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs.Args()
}

func loadVoxels(path string) *voxel.MemoryStore {
	store, err := voxel.Load(path)
	if err != nil {
		logger.Fatal("failed to load voxels", zap.String("path", path), zap.Error(err))
	}
	lo, hi := store.Bounds()
	logger.Info("voxels loaded",
		zap.String("path", path),
		zap.Int("count", store.Len()),
		zap.Ints("layers", store.Layers()),
		zap.Ints("min", lo[:]),
		zap.Ints("max", hi[:]))
	return store
}

func cmdMesh(args []string) {
	cfg, rest := setup("mesh", args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxmesh mesh [options] <voxels>")
		os.Exit(1)
	}
	store := loadVoxels(rest[0])

	e, err := export.New(cfg)
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	groups, err := e.Run(context.Background(), store)
	if err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}

	format, _ := imageio.ParseFormat(cfg.Output.ImageFormat)
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		logger.Fatal("failed to create output dir", zap.Error(err))
	}

	for _, g := range groups {
		if cfg.Output.WriteTables {
			if err := writeTables(cfg.Output.Dir, g); err != nil {
				logger.Fatal("failed to write tables", zap.String("group", g.Name), zap.Error(err))
			}
		}
		textures := g.Textures()
		for _, id := range g.TextureIDs() {
			path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("%s_tex%d%s", g.Name, id, format.Ext()))
			if err := imageio.Save(path, textures[id]); err != nil {
				logger.Fatal("failed to write atlas", zap.String("path", path), zap.Error(err))
			}
			if fi, err := os.Stat(path); err == nil {
				logger.Info("atlas written", zap.String("path", path), zap.String("size", humanize.Bytes(uint64(fi.Size()))))
			}
		}
		fmt.Printf("%-12s %6d triangles %6d points %6d uvs %3d textures\n",
			g.Name, len(g.Triangles), g.PointCount(), g.UVCount(), len(textures))
	}
}

func writeTables(dir string, g *export.MeshGroup) error {
	f, err := os.Create(filepath.Join(dir, g.Name+".txt"))
	if err != nil {
		return err
	}
	if err := g.WriteText(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cmdStats(args []string) {
	cfg, rest := setup("stats", args)
	defer logger.Sync()

	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: voxmesh stats [options] <voxels>")
		os.Exit(1)
	}
	store := loadVoxels(rest[0])

	fmt.Printf("%-12s %10s %10s %10s\n", "strategy", "triangles", "points", "time")
	for _, name := range config.Strategies() {
		c := *cfg
		c.Mesh.Strategy = name
		c.Texture.Enabled = false

		e, err := export.New(&c)
		if err != nil {
			logger.Fatal("invalid config", zap.Error(err))
		}
		start := time.Now()
		groups, err := e.Run(context.Background(), store)
		if err != nil {
			logger.Fatal("export failed", zap.String("strategy", name), zap.Error(err))
		}
		elapsed := time.Since(start)

		var tris, points int
		for _, g := range groups {
			tris += len(g.Triangles)
			points += g.PointCount()
		}
		fmt.Printf("%-12s %10s %10s %10s\n", name, humanize.Comma(int64(tris)), humanize.Comma(int64(points)), elapsed.Round(time.Millisecond))
	}
}

func cmdConfig(args []string) {
	cfg := config.Default()

	var err error
	path := filepath.Join(config.ConfigDir(), "voxmesh.yaml")
	if len(args) > 0 {
		path = args[0]
		err = cfg.SaveTo(path)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}
