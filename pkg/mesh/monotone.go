package mesh

import (
	"image"
	"sort"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// run is the half-open span [l, r) of occupied cells in one row.
type run struct{ l, r int }

// piece is a stack of row runs whose outline is monotone when points are
// ordered by (y, x) (slant > 0) or by (y, -x) (slant < 0). Such an outline
// has both of its sides stepping in the same x direction while going up.
type piece struct {
	y0    int
	runs  []run
	slant int
}

func rowRuns(g *grid.Grid, y int) []run {
	var runs []run
	for x := 0; x < g.Width(); {
		if !g.At(x, y) {
			x++
			continue
		}
		start := x
		for x < g.Width() && g.At(x, y) {
			x++
		}
		runs = append(runs, run{start, x})
	}
	return runs
}

func overlaps(a, b run) bool { return a.l < b.r && b.l < a.r }

// stepSlant returns the slant that stacking cur on prev requires: 0 when the
// sides do not move, +1 or -1 when both move the same way, and false when
// they move apart or together.
func stepSlant(prev, cur run) (int, bool) {
	dl, dr := cur.l-prev.l, cur.r-prev.r
	switch {
	case dl == 0 && dr == 0:
		return 0, true
	case dl >= 0 && dr >= 0:
		return 1, true
	case dl <= 0 && dr <= 0:
		return -1, true
	}
	return 0, false
}

// monotonePieces sweeps the rows bottom-up and stacks each run onto the piece
// below it when the two runs only overlap each other and the slant stays
// consistent.
func monotonePieces(g *grid.Grid) []*piece {
	var pieces []*piece
	var prevRuns []run
	var prevPiece []int

	for y := range g.Height() {
		runs := rowRuns(g, y)
		curPiece := make([]int, len(runs))
		for i, cur := range runs {
			curPiece[i] = -1
			match := -1
			n := 0
			for j, p := range prevRuns {
				if overlaps(p, cur) {
					match = j
					n++
				}
			}
			if n == 1 {
				up := 0
				for _, c := range runs {
					if overlaps(prevRuns[match], c) {
						up++
					}
				}
				pc := pieces[prevPiece[match]]
				if s, ok := stepSlant(prevRuns[match], cur); up == 1 && ok && (s == 0 || pc.slant == 0 || pc.slant == s) {
					if s != 0 {
						pc.slant = s
					}
					pc.runs = append(pc.runs, cur)
					curPiece[i] = prevPiece[match]
					continue
				}
			}
			curPiece[i] = len(pieces)
			pieces = append(pieces, &piece{y0: y, runs: []run{cur}})
		}
		prevRuns, prevPiece = runs, curPiece
	}
	return pieces
}

// outline returns the corners of the piece in counter-clockwise order,
// starting at the bottom-left corner.
func (p *piece) outline() []image.Point {
	k := len(p.runs)
	pts := []image.Point{
		image.Pt(p.runs[0].l, p.y0),
		image.Pt(p.runs[0].r, p.y0),
	}
	for i := 0; i+1 < k; i++ {
		if p.runs[i+1].r != p.runs[i].r {
			y := p.y0 + i + 1
			pts = append(pts, image.Pt(p.runs[i].r, y), image.Pt(p.runs[i+1].r, y))
		}
	}
	top := p.y0 + k
	pts = append(pts, image.Pt(p.runs[k-1].r, top), image.Pt(p.runs[k-1].l, top))
	for i := k - 1; i > 0; i-- {
		if p.runs[i-1].l != p.runs[i].l {
			y := p.y0 + i
			pts = append(pts, image.Pt(p.runs[i].l, y), image.Pt(p.runs[i-1].l, y))
		}
	}
	return pts
}

// triangulate splits the piece, mirroring it first when it slants left so
// the sweep always runs in (y, x) order.
func (p *piece) triangulate() []Triangle {
	pts := p.outline()
	if p.slant >= 0 {
		return triangulateMonotone(pts)
	}
	mirrored := make([]image.Point, len(pts))
	for i, q := range pts {
		// mirroring flips the winding, so reverse to stay counter-clockwise
		mirrored[len(pts)-1-i] = image.Pt(-q.X, q.Y)
	}
	tris := triangulateMonotone(mirrored)
	for i, t := range tris {
		tris[i] = Triangle{
			image.Pt(-t[0].X, t[0].Y),
			image.Pt(-t[2].X, t[2].Y),
			image.Pt(-t[1].X, t[1].Y),
		}
	}
	return tris
}

func below(a, b image.Point) bool {
	return a.Y < b.Y || (a.Y == b.Y && a.X < b.X)
}

// triangulateMonotone triangulates a counter-clockwise polygon that is
// monotone in (y, x) order with the classic stack sweep. Collinear fans
// produce no triangle; the point they would have joined is left for
// fixEdges.
func triangulateMonotone(pts []image.Point) []Triangle {
	n := len(pts)
	bottom, top := 0, 0
	for i, p := range pts {
		if below(p, pts[bottom]) {
			bottom = i
		}
		if below(pts[top], p) {
			top = i
		}
	}
	// +1: right chain (bottom to top counter-clockwise), -1: left chain
	chain := make([]int, n)
	for i := (bottom + 1) % n; i != top; i = (i + 1) % n {
		chain[i] = 1
	}
	for i := (top + 1) % n; i != bottom; i = (i + 1) % n {
		chain[i] = -1
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return below(pts[order[a]], pts[order[b]]) })

	var tris []Triangle
	emit := func(a, b, c int) {
		if t, ok := ccw(pts[a], pts[b], pts[c]); ok {
			tris = append(tris, t)
		}
	}

	stack := []int{order[0], order[1]}
	pop := func() int {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for j := 2; j < n-1; j++ {
		u := order[j]
		if chain[u] != chain[stack[len(stack)-1]] {
			for len(stack) > 1 {
				a := pop()
				emit(u, a, stack[len(stack)-1])
			}
			stack = append(stack[:0], order[j-1], u)
			continue
		}
		v := pop()
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			d1 := pts[v].Sub(pts[q])
			d2 := pts[u].Sub(pts[v])
			cross := d1.X*d2.Y - d1.Y*d2.X
			if cross*chain[u] <= 0 {
				break
			}
			emit(q, v, u)
			v = pop()
		}
		stack = append(stack, v, u)
	}
	u := order[n-1]
	for len(stack) > 1 {
		a := pop()
		emit(u, a, stack[len(stack)-1])
	}
	return tris
}

// Monotone splits the occupied cells into monotone pieces, triangulates each
// with a stack sweep and then repairs T-junctions with fixEdges.
func Monotone(g *grid.Grid) []Triangle {
	var tris []Triangle
	for _, p := range monotonePieces(g) {
		tris = append(tris, p.triangulate()...)
	}
	return fixEdges(tris)
}

// fixEdges splits every triangle that has a mesh corner lying inside one of
// its edges, until no such corner remains. Triangle corners sit on grid
// points, so only the lattice points along each edge need checking.
func fixEdges(tris []Triangle) []Triangle {
	corners := make(map[image.Point]bool)
	for _, t := range tris {
		for _, p := range t {
			corners[p] = true
		}
	}
	out := make([]Triangle, 0, len(tris))
	work := append([]Triangle(nil), tris...)
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		split := false
		for e := range 3 {
			a, b, c := t[e], t[(e+1)%3], t[(e+2)%3]
			if p, ok := cornerOnEdge(corners, a, b); ok {
				work = append(work, Triangle{a, p, c}, Triangle{p, b, c})
				split = true
				break
			}
		}
		if !split {
			out = append(out, t)
		}
	}
	return out
}

// cornerOnEdge returns a known corner strictly between a and b.
func cornerOnEdge(corners map[image.Point]bool, a, b image.Point) (image.Point, bool) {
	d := b.Sub(a)
	n := gcd(abs(d.X), abs(d.Y))
	if n < 2 {
		return image.Point{}, false
	}
	step := image.Pt(d.X/n, d.Y/n)
	p := a
	for i := 1; i < n; i++ {
		p = p.Add(step)
		if corners[p] {
			return p, true
		}
	}
	return image.Point{}, false
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
