// Package triangulate meshes polygons with holes through a general
// triangulation backend. Coincident corners, which the backend rejects,
// are pulled apart by a small offset before triangulation and snapped back
// by Round.
package triangulate

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/voxmesh/pkg/grid"
	"github.com/Faultbox/voxmesh/pkg/mesh"
	"github.com/Faultbox/voxmesh/pkg/polygon"
)

// DefaultEpsilon is the offset applied to repeated corners.
const DefaultEpsilon = 1e-3

// Adapter triangulates polygons on one shared Context. Calls may come from
// several goroutines; each polygon holds the context for its whole
// prepare, run and clear cycle.
type Adapter struct {
	Epsilon float64

	mu  sync.Mutex
	ctx *Context
}

// NewAdapter returns an adapter with its own context.
func NewAdapter() *Adapter {
	return &Adapter{Epsilon: DefaultEpsilon, ctx: NewContext()}
}

// Triangulate triangulates every polygon. Output corners are only exact to
// within Epsilon; use Round for grid coordinates.
func (a *Adapter) Triangulate(polys []polygon.Polygon) ([]Triangle, error) {
	var out []Triangle
	for i := range polys {
		tris, err := a.triangulate(Perturb(&polys[i], a.Epsilon))
		if err != nil {
			return nil, fmt.Errorf("polygon %d: %w", i, err)
		}
		out = append(out, tris...)
	}
	return out, nil
}

func (a *Adapter) triangulate(rings [][]mgl64.Vec2) ([]Triangle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.ctx.Clear()

	if err := a.ctx.Prepare(rings); err != nil {
		return nil, err
	}
	if err := a.ctx.Run(); err != nil {
		return nil, err
	}
	return a.ctx.Triangles(), nil
}

// Mesh extracts the polygons of g and triangulates them. A polygon the
// backend cannot handle means the extracted rings are malformed, so it
// panics.
func (a *Adapter) Mesh(g *grid.Grid) []mesh.Triangle {
	tris, err := a.Triangulate(polygon.Extract(g))
	if err != nil {
		panic(err)
	}
	return Round(tris)
}

// Perturb converts the rings of p to backend points. Every corner that
// occurs more than once is moved eps along the bisector of its own corner,
// into the filled side, so the copies separate without overlapping any
// other part of the polygon.
func Perturb(p *polygon.Polygon, eps float64) [][]mgl64.Vec2 {
	rings := p.Rings()
	count := make(map[image.Point]int)
	for _, r := range rings {
		for _, pt := range r {
			count[pt]++
		}
	}

	out := make([][]mgl64.Vec2, len(rings))
	for ri, r := range rings {
		n := len(r)
		pts := make([]mgl64.Vec2, n)
		for i, pt := range r {
			v := mgl64.Vec2{float64(pt.X), float64(pt.Y)}
			if count[pt] > 1 {
				v = v.Add(inward(r[(i+n-1)%n], pt, r[(i+1)%n]).Mul(eps))
			}
			pts[i] = v
		}
		out[ri] = pts
	}
	return out
}

// inward returns the unit bisector of the corner at b pointing to the left
// of the ring, where the filled area is.
func inward(a, b, c image.Point) mgl64.Vec2 {
	d1 := mgl64.Vec2{float64(b.X - a.X), float64(b.Y - a.Y)}.Normalize()
	d2 := mgl64.Vec2{float64(c.X - b.X), float64(c.Y - b.Y)}.Normalize()
	n := mgl64.Vec2{-d1[1], d1[0]}.Add(mgl64.Vec2{-d2[1], d2[0]})
	if n.Len() < tolerance {
		// a spike reversing on itself
		return mgl64.Vec2{-d1[1], d1[0]}
	}
	return n.Normalize()
}

// Round snaps corners to the grid and drops triangles that collapse.
func Round(tris []Triangle) []mesh.Triangle {
	out := make([]mesh.Triangle, 0, len(tris))
	for _, t := range tris {
		var r mesh.Triangle
		for i, p := range t {
			r[i] = image.Pt(int(math.Round(p[0])), int(math.Round(p[1])))
		}
		switch a := r.Area2(); {
		case a > 0:
			out = append(out, r)
		case a < 0:
			out = append(out, mesh.Triangle{r[0], r[2], r[1]})
		}
	}
	return out
}
