package mesh

import (
	"fmt"
	"image"
	"sort"

	"github.com/Faultbox/voxmesh/pkg/grid"
	"github.com/Faultbox/voxmesh/pkg/matching"
	"github.com/Faultbox/voxmesh/pkg/polygon"
)

// Stats describes how one polygon was decomposed by OptimalRects.
type Stats struct {
	Vertices    int // corners over all rings
	Holes       int
	Independent int // chosen non-crossing diagonals
	Rectangles  int
}

// Bound returns V/2 + H - I - 1, the minimum rectangle count for a polygon
// whose rings do not touch themselves at a corner.
func (s Stats) Bound() int {
	return s.Vertices/2 + s.Holes - s.Independent - 1
}

// diagonal is a chord between two concave corners. a is left of or below b.
type diagonal struct {
	a, b image.Point
}

func (d diagonal) horizontal() bool { return d.a.Y == d.b.Y }

// crosses reports whether a horizontal and a vertical diagonal share a
// point, endpoints included.
func crosses(h, v diagonal) bool {
	return h.a.X <= v.a.X && v.a.X <= h.b.X && v.a.Y <= h.a.Y && h.a.Y <= v.b.Y
}

var neighbours4 = []image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// components labels 4-connected groups of occupied cells in column scan
// order. Empty cells are labeled -1.
func components(g *grid.Grid) ([]int, int) {
	w, h := g.Width(), g.Height()
	comp := make([]int, w*h)
	for i := range comp {
		comp[i] = -1
	}
	n := 0
	var stack []image.Point
	for x := range w {
		for y := range h {
			if !g.At(x, y) || comp[x*h+y] >= 0 {
				continue
			}
			comp[x*h+y] = n
			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, d := range neighbours4 {
					q := p.Add(d)
					if g.At(q.X, q.Y) && comp[q.X*h+q.Y] < 0 {
						comp[q.X*h+q.Y] = n
						stack = append(stack, q)
					}
				}
			}
			n++
		}
	}
	return comp, n
}

// leftCell returns the cell on the filled side of the unit step from p in
// direction d.
func leftCell(p, d image.Point) image.Point {
	switch {
	case d.Y > 0:
		return image.Pt(p.X-1, p.Y)
	case d.X > 0:
		return p
	case d.Y < 0:
		return image.Pt(p.X, p.Y-1)
	}
	return image.Pt(p.X-1, p.Y-1)
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// decomposer carries the state of one OptimalRects run.
type decomposer struct {
	g     *grid.Grid
	comp  []int
	owner []int // component -> polygon index

	vcut    map[image.Point]bool // (x,y)-(x,y+1)
	hcut    map[image.Point]bool // (x,y)-(x+1,y)
	touched map[image.Point]bool
}

func (d *decomposer) filled(x, y int) bool { return d.g.At(x, y) }

// interior reports whether all four cells around corner p are occupied.
func (d *decomposer) interior(p image.Point) bool {
	return d.filled(p.X-1, p.Y-1) && d.filled(p.X, p.Y-1) && d.filled(p.X-1, p.Y) && d.filled(p.X, p.Y)
}

func (d *decomposer) polygonOf(cell image.Point) int {
	c := d.comp[cell.X*d.g.Height()+cell.Y]
	if c < 0 {
		panic(fmt.Sprintf("mesh: cell %v is not occupied", cell))
	}
	return d.owner[c]
}

// concave returns the reflex corners of all rings in (x, y) order.
func concave(polys []polygon.Polygon) []image.Point {
	var pts []image.Point
	for i := range polys {
		for _, r := range polys[i].Rings() {
			n := len(r)
			for j, p := range r {
				d1 := p.Sub(r[(j+n-1)%n])
				d2 := r[(j+1)%n].Sub(p)
				if d1.X*d2.Y-d1.Y*d2.X < 0 {
					pts = append(pts, p)
				}
			}
		}
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
	return pts
}

// diagonals walks from every concave corner along +x and +y through the
// interior and keeps the walks that end on another concave corner.
func (d *decomposer) diagonals(corners []image.Point) (hs, vs []diagonal) {
	isConcave := make(map[image.Point]bool, len(corners))
	for _, p := range corners {
		isConcave[p] = true
	}
	for _, p := range corners {
		// +x: the cells below and above each step must be occupied
		q := p
		for d.filled(q.X, q.Y-1) && d.filled(q.X, q.Y) {
			q.X++
			if isConcave[q] {
				hs = append(hs, diagonal{p, q})
				break
			}
		}
		q = p
		for d.filled(q.X-1, q.Y) && d.filled(q.X, q.Y) {
			q.Y++
			if isConcave[q] {
				vs = append(vs, diagonal{p, q})
				break
			}
		}
	}
	return hs, vs
}

func (d *decomposer) cut(a, b image.Point) {
	step := image.Pt(sign(b.X-a.X), sign(b.Y-a.Y))
	for p := a; p != b; p = p.Add(step) {
		q := p.Add(step)
		switch {
		case step.X != 0:
			d.hcut[image.Pt(min(p.X, q.X), p.Y)] = true
		default:
			d.vcut[image.Pt(p.X, min(p.Y, q.Y))] = true
		}
		d.touched[p] = true
	}
	d.touched[b] = true
}

// extend cuts vertically from an unresolved concave corner into the
// interior until the cut reaches the boundary or an earlier cut.
func (d *decomposer) extend(p image.Point) {
	dir := image.Pt(0, 1)
	if d.filled(p.X-1, p.Y-1) && d.filled(p.X, p.Y-1) {
		dir.Y = -1
	}
	d.touched[p] = true
	for {
		q := p.Add(dir)
		d.vcut[image.Pt(p.X, min(p.Y, q.Y))] = true
		stop := !d.interior(q) || d.touched[q]
		d.touched[q] = true
		if stop {
			return
		}
		p = q
	}
}

// regions flood-fills the occupied cells across every shared edge that is
// not cut and returns each region's bounds. Every region must be a
// rectangle.
func (d *decomposer) regions() []image.Rectangle {
	w, h := d.g.Width(), d.g.Height()
	seen := make([]bool, w*h)
	var rects []image.Rectangle
	var stack []image.Point
	for x := range w {
		for y := range h {
			if !d.filled(x, y) || seen[x*h+y] {
				continue
			}
			seen[x*h+y] = true
			stack = append(stack[:0], image.Pt(x, y))
			b := image.Rect(x, y, x+1, y+1)
			cells := 0
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				cells++
				b = b.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))
				for _, n := range neighbours4 {
					q := p.Add(n)
					if !d.filled(q.X, q.Y) || seen[q.X*h+q.Y] || d.blocked(p, q) {
						continue
					}
					seen[q.X*h+q.Y] = true
					stack = append(stack, q)
				}
			}
			if cells != b.Dx()*b.Dy() {
				panic(fmt.Sprintf("mesh: region at %v is not a rectangle", b))
			}
			rects = append(rects, b)
		}
	}
	return rects
}

// blocked reports whether a cut separates the adjacent cells p and q.
func (d *decomposer) blocked(p, q image.Point) bool {
	if p.Y == q.Y {
		return d.vcut[image.Pt(max(p.X, q.X), p.Y)]
	}
	return d.hcut[image.Pt(p.X, max(p.Y, q.Y))]
}

// OptimalRects decomposes the occupied cells into the fewest rectangles.
// For every polygon it picks a maximum set of pairwise non-crossing chords
// between concave corners (a maximum independent set of the bipartite
// crossing graph), cuts along them, then cuts once from every concave corner
// still unresolved. The returned stats are indexed like polygon.Extract(g).
func OptimalRects(g *grid.Grid) ([]image.Rectangle, []Stats) {
	polys := polygon.Extract(g)
	comp, n := components(g)
	if n != len(polys) {
		panic(fmt.Sprintf("mesh: %d components but %d polygons", n, len(polys)))
	}

	d := &decomposer{
		g:       g,
		comp:    comp,
		owner:   make([]int, n),
		vcut:    make(map[image.Point]bool),
		hcut:    make(map[image.Point]bool),
		touched: make(map[image.Point]bool),
	}
	for i := range d.owner {
		d.owner[i] = -1
	}
	stats := make([]Stats, len(polys))
	for i := range polys {
		out := polys[i].Outline
		c := leftCell(out[0], image.Pt(sign(out[1].X-out[0].X), sign(out[1].Y-out[0].Y)))
		ci := comp[c.X*g.Height()+c.Y]
		if ci < 0 || d.owner[ci] >= 0 {
			panic(fmt.Sprintf("mesh: polygon %d does not map to a unique component", i))
		}
		d.owner[ci] = i
		stats[i].Vertices = polys[i].Vertices()
		stats[i].Holes = len(polys[i].Holes)
	}

	corners := concave(polys)
	hs, vs := d.diagonals(corners)
	bg := matching.NewGraph(len(hs), len(vs))
	for i, h := range hs {
		for j, v := range vs {
			if crosses(h, v) {
				bg.AddEdge(i, j)
			}
		}
	}
	left, right := matching.MaxIndependentSet(bg)
	for _, i := range left {
		d.cut(hs[i].a, hs[i].b)
		stats[d.polygonOf(hs[i].a)].Independent++
	}
	for _, j := range right {
		d.cut(vs[j].a, vs[j].b)
		stats[d.polygonOf(vs[j].a)].Independent++
	}

	for _, p := range corners {
		if !d.touched[p] {
			d.extend(p)
		}
	}

	rects := d.regions()
	for _, r := range rects {
		stats[d.polygonOf(r.Min)].Rectangles++
	}
	sort.Slice(rects, func(i, j int) bool {
		if rects[i].Min.X != rects[j].Min.X {
			return rects[i].Min.X < rects[j].Min.X
		}
		return rects[i].Min.Y < rects[j].Min.Y
	})

	return rects, stats
}

// Optimal meshes g with OptimalRects, two triangles per rectangle.
func Optimal(g *grid.Grid) []Triangle {
	rects, _ := OptimalRects(g)
	return rectsToTriangles(rects)
}
