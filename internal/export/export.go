// Package export turns a voxel store into textured triangle meshes, one per
// mesh group.
//
// Every visible voxel face is sorted into its plane, each plane is
// rasterised into an occupancy grid and meshed with the configured
// strategy, and, unless meshing flat, every triangle gets its own texture.
// The textures of a group are then packed into one atlas and the final
// texture coordinates are read back through the atlas.
package export

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/DmitriyVTitov/size"
	"github.com/dustin/go-humanize"
	"github.com/twinj/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/voxmesh/internal/config"
	"github.com/Faultbox/voxmesh/internal/logger"
	"github.com/Faultbox/voxmesh/internal/voxel"
	"github.com/Faultbox/voxmesh/pkg/atlas"
	"github.com/Faultbox/voxmesh/pkg/corner"
	"github.com/Faultbox/voxmesh/pkg/grid"
	"github.com/Faultbox/voxmesh/pkg/mesh"
	"github.com/Faultbox/voxmesh/pkg/texture"
	"github.com/Faultbox/voxmesh/pkg/triangulate"
)

// Exporter runs exports with one configuration. It is safe for concurrent
// use; the triangulation backend serialises itself.
type Exporter struct {
	cfg    config.Config
	mesher mesh.Mesher
	log    *zap.Logger
}

// New returns an exporter for cfg.
func New(cfg *config.Config) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Exporter{cfg: *cfg, log: logger.Named("export")}

	name := strings.ToLower(cfg.Mesh.Strategy)
	if name == config.TriangulateStrategy {
		e.mesher = triangulate.NewAdapter()
	} else {
		e.mesher, _ = mesh.Lookup(name)
	}
	return e, nil
}

// planeMesh is the output of one job.
type planeMesh struct {
	job      job
	tris     []mesh.Triangle // plane coordinates
	textures []*texture.Texture
}

// Run meshes every group of store. Groups are ordered by layer; triangles
// within a group by plane, then by the order the strategy emitted them.
func (e *Exporter) Run(ctx context.Context, store voxel.Store) ([]*MeshGroup, error) {
	runID := uuid.NewV4().String()
	log := e.log.With(zap.String("run", runID))
	start := time.Now()

	sets := e.groups(store.Voxels())
	log.Info("export started",
		zap.String("strategy", e.cfg.Mesh.Strategy),
		zap.Bool("textured", e.cfg.Texture.Enabled),
		zap.Int("voxels", len(store.Voxels())),
		zap.Int("groups", len(sets)))

	groups := make([]*MeshGroup, 0, len(sets))
	for _, set := range sets {
		g, err := e.runGroup(ctx, store, set, log)
		if err != nil {
			return nil, fmt.Errorf("group %s: %w", set.name, err)
		}
		groups = append(groups, g)
	}

	log.Info("export finished", zap.Duration("elapsed", time.Since(start)))
	return groups, nil
}

// voxelSet is the input of one mesh group.
type voxelSet struct {
	name   string
	layer  int
	voxels []voxel.Voxel
}

func (e *Exporter) groups(vs []voxel.Voxel) []voxelSet {
	if !e.cfg.Mesh.GroupByLayer {
		if len(vs) == 0 {
			return nil
		}
		return []voxelSet{{name: "mesh", voxels: vs}}
	}

	byLayer := make(map[int][]voxel.Voxel)
	var layers []int
	for _, v := range vs {
		if _, ok := byLayer[v.Layer]; !ok {
			layers = append(layers, v.Layer)
		}
		byLayer[v.Layer] = append(byLayer[v.Layer], v)
	}
	sort.Ints(layers)

	sets := make([]voxelSet, 0, len(layers))
	for _, l := range layers {
		sets = append(sets, voxelSet{name: fmt.Sprintf("layer%d", l), layer: l, voxels: byLayer[l]})
	}
	return sets
}

func (e *Exporter) runGroup(ctx context.Context, store voxel.Store, set voxelSet, log *zap.Logger) (*MeshGroup, error) {
	log = log.With(zap.String("group", set.name))

	members := func(voxel.Voxel) bool { return true }
	if e.cfg.Mesh.GroupByLayer {
		members = func(v voxel.Voxel) bool { return v.Layer == set.layer }
	}
	textured := e.cfg.Texture.Enabled
	jobs := visibleFaces(set.voxels, store, members, !textured)

	results, err := e.meshPlanes(ctx, store, jobs)
	if err != nil {
		return nil, err
	}

	var m *atlas.Manager
	if textured {
		m = atlas.NewManager()
		m.Nudge = e.cfg.Texture.UVNudge
		m.Progress = progressLogger(log)
	}
	g := newGroup(set.name, set.layer, m)

	var texIDs []atlas.ID
	var order [][3]int
	for _, r := range results {
		wind := winding(r.job.plane)
		for i, tri := range r.tris {
			var pts [3]corner.Point
			for k, c := range wind {
				pts[k] = cornerPoint(r.job.plane, tri[c])
			}
			t := Triangle{Plane: r.job.plane, Texture: atlas.None}
			if textured {
				id := m.Add(r.textures[i])
				texIDs = append(texIDs, id)
			} else {
				t.Color = r.job.color
			}
			g.add(t, pts)
			order = append(order, wind)
		}
	}

	if textured && len(texIDs) > 0 {
		m.Combine(texIDs)
		for i, id := range texIDs {
			uv := m.UV(id)
			var uvs [3]corner.UV
			for k, c := range order[i] {
				uvs[k] = corner.UV{U: uv[c].X, V: uv[c].Y}
			}
			g.setUV(i, uvs)
			g.Triangles[i].Texture = m.Root(id)
		}
	}
	g.finalize()

	fields := []zap.Field{
		zap.Int("planes", len(jobs)),
		zap.Int("triangles", len(g.Triangles)),
		zap.Int("points", g.PointCount()),
		zap.Int("uvs", g.UVCount()),
	}
	for _, id := range g.TextureIDs() {
		w, h := m.Size(id)
		fields = append(fields,
			zap.String("atlas", fmt.Sprintf("%dx%d", w, h)),
			zap.String("atlas_bytes", humanize.Bytes(uint64(w*h*4))))
	}
	log.Info("group meshed", fields...)
	log.Debug("group memory", zap.String("estimate", humanize.Bytes(uint64(size.Of(g)))))
	return g, nil
}

// meshPlanes runs all jobs on a bounded worker pool. Results keep job order.
func (e *Exporter) meshPlanes(ctx context.Context, store voxel.Store, jobs []job) ([]planeMesh, error) {
	workers := e.cfg.Mesh.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	lookup := func(pos [3]int) (uint32, bool) {
		v, ok := store.VoxelAt(pos)
		return v.Color, ok
	}

	results := make([]planeMesh, len(jobs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, j := range jobs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.meshPlane(j, lookup)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Exporter) meshPlane(j job, lookup texture.Lookup) planeMesh {
	layer := grid.Build(j.plane, j.cells)
	tris := e.mesher.Mesh(layer.Grid)
	for i := range tris {
		tris[i] = tris[i].Translate(layer.Origin)
	}

	r := planeMesh{job: j, tris: tris}
	if !e.cfg.Texture.Enabled {
		return r
	}
	r.textures = make([]*texture.Texture, len(tris))
	for i, tri := range tris {
		t := texture.Extract(j.plane, tri, lookup)
		if e.cfg.Texture.Compress {
			texture.Compress(t)
		}
		if e.cfg.Texture.Padding {
			texture.Pad(t)
		}
		r.textures[i] = t
	}
	return r
}

// winding returns the corner order that makes a plane-space CCW triangle
// CCW seen from outside. Plane space is right-handed around +Axis.
func winding(p grid.Plane) [3]int {
	if p.Positive {
		return [3]int{0, 1, 2}
	}
	return [3]int{0, 2, 1}
}

func cornerPoint(p grid.Plane, c image.Point) corner.Point {
	r := p.Point(float64(c.X), float64(c.Y)).Round()
	return corner.Point{X: r[0], Y: r[1], Z: r[2]}
}

// progressLogger reports atlas progress in steps of at least 10 percent.
func progressLogger(log *zap.Logger) atlas.Progress {
	last := make(map[string]int)
	return func(stage string, percent int) {
		prev, seen := last[stage]
		if seen && (percent == prev || (percent-prev < 10 && percent < 100)) {
			return
		}
		last[stage] = percent
		log.Debug("atlas progress", zap.String("stage", stage), zap.Int("percent", percent))
	}
}
