package export

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"sort"

	"github.com/Faultbox/voxmesh/pkg/atlas"
	"github.com/Faultbox/voxmesh/pkg/corner"
	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Triangle is one output triangle. Points and UVs index the group's point
// and UV tables and are wound counter-clockwise seen from outside the model.
type Triangle struct {
	Plane   grid.Plane
	Points  [3]int
	UVs     [3]int   // unset in flat mode
	Texture atlas.ID // atlas root, atlas.None in flat mode
	Color   uint32   // face color in flat mode, 0 otherwise
}

// MeshGroup is the mesh of one set of voxels, such as one layer.
type MeshGroup struct {
	Name  string
	Layer int

	Triangles []Triangle

	points *corner.Manager[corner.Point]
	uvs    *corner.Manager[corner.UV]
	atlas  *atlas.Manager

	pointRefs [][3]corner.Handle
	uvRefs    [][3]corner.Handle
}

func newGroup(name string, layer int, m *atlas.Manager) *MeshGroup {
	return &MeshGroup{
		Name:   name,
		Layer:  layer,
		points: corner.NewManager[corner.Point](),
		uvs:    corner.NewManager[corner.UV](),
		atlas:  m,
	}
}

// add appends a triangle given in 3D corner coordinates.
func (g *MeshGroup) add(t Triangle, pts [3]corner.Point) int {
	var refs [3]corner.Handle
	for i, p := range pts {
		refs[i] = g.points.Add(p)
	}
	g.Triangles = append(g.Triangles, t)
	g.pointRefs = append(g.pointRefs, refs)
	g.uvRefs = append(g.uvRefs, [3]corner.Handle{-1, -1, -1})
	return len(g.Triangles) - 1
}

// setUV attaches texture coordinates to triangle i.
func (g *MeshGroup) setUV(i int, uvs [3]corner.UV) {
	for k, uv := range uvs {
		g.uvRefs[i][k] = g.uvs.Add(uv)
	}
}

// finalize assigns table ids to every triangle corner.
func (g *MeshGroup) finalize() {
	g.points.Finalize()
	g.uvs.Finalize()
	for i := range g.Triangles {
		t := &g.Triangles[i]
		for k := range 3 {
			t.Points[k] = g.points.ID(g.pointRefs[i][k])
			t.UVs[k] = -1
			if g.uvRefs[i][k] >= 0 {
				t.UVs[k] = g.uvs.ID(g.uvRefs[i][k])
			}
		}
	}
}

// PointCount returns the number of distinct points.
func (g *MeshGroup) PointCount() int { return g.points.Count() }

// UVCount returns the number of distinct texture coordinates.
func (g *MeshGroup) UVCount() int { return g.uvs.Count() }

// Points returns the point table indexed by id.
func (g *MeshGroup) Points() []corner.Point { return g.points.Table() }

// UVList returns the texture coordinate table indexed by id.
func (g *MeshGroup) UVList() []corner.UV { return g.uvs.Table() }

// PointTable returns all point coordinates as "x y z x y z ...".
func (g *MeshGroup) PointTable() string { return g.points.Joined() }

// UVTable returns all texture coordinates as "u v u v ...".
func (g *MeshGroup) UVTable() string { return g.uvs.Joined() }

// Textures returns the atlas image of every texture used by the group.
func (g *MeshGroup) Textures() map[atlas.ID]*image.NRGBA {
	out := make(map[atlas.ID]*image.NRGBA)
	for id := range g.TextureUsage() {
		out[id] = g.atlas.Image(id)
	}
	return out
}

// TextureUsage counts the triangles sampling each texture.
func (g *MeshGroup) TextureUsage() map[atlas.ID]int {
	usage := make(map[atlas.ID]int)
	for _, t := range g.Triangles {
		if t.Texture != atlas.None {
			usage[t.Texture]++
		}
	}
	return usage
}

// TextureIDs returns the used texture ids in ascending order.
func (g *MeshGroup) TextureIDs() []atlas.ID {
	var ids []atlas.ID
	for id := range g.TextureUsage() {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// WriteText dumps the group tables in a line-based text form.
func (g *MeshGroup) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "group %s\n", g.Name)
	fmt.Fprintf(bw, "points %d\n%s\n", g.PointCount(), g.PointTable())
	fmt.Fprintf(bw, "uvs %d\n%s\n", g.UVCount(), g.UVTable())
	fmt.Fprintf(bw, "triangles %d\n", len(g.Triangles))
	for _, t := range g.Triangles {
		p := t.Points
		if t.Texture == atlas.None {
			fmt.Fprintf(bw, "%d %d %d color %08x\n", p[0], p[1], p[2], t.Color)
			continue
		}
		uv := t.UVs
		fmt.Fprintf(bw, "%d %d %d uv %d %d %d texture %d\n", p[0], p[1], p[2], uv[0], uv[1], uv[2], t.Texture)
	}
	return bw.Flush()
}
