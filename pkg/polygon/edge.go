package polygon

import (
	"image"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Unassigned marks an edge that has not been walked into a polygon yet.
const Unassigned = -1

// Edge is a unit boundary step between an occupied and an empty cell,
// directed so the occupied cell lies on its left.
type Edge struct {
	X1, Y1, X2, Y2 int
	// Sign is -1 for edges running down or left and +1 for edges running up
	// or right. A downward vertical edge is the left side of an occupied run
	// and starts an outline; an upward one starts a hole.
	Sign    int
	Polygon int
}

// Start returns the first corner.
func (e *Edge) Start() image.Point { return image.Pt(e.X1, e.Y1) }

// End returns the second corner.
func (e *Edge) End() image.Point { return image.Pt(e.X2, e.Y2) }

// Dir returns the unit step of the edge.
func (e *Edge) Dir() image.Point { return image.Pt(e.X2-e.X1, e.Y2-e.Y1) }

// Vertical reports whether the edge runs along y.
func (e *Edge) Vertical() bool { return e.X1 == e.X2 }

// edgeSet holds the boundary of one grid, indexed by start corner.
type edgeSet struct {
	edges []Edge
	// vertical edges come first, in column scan order
	nVertical int
	// start corner hash -> edge indices; vertical and horizontal are kept
	// apart as they come from separate scans
	vertical   map[int][]int
	horizontal map[int][]int
	stride     int
}

// hash packs a corner into a positive integer.
func (s *edgeSet) hash(p image.Point) int {
	return p.Y*s.stride + p.X + 1
}

// Edges returns every boundary edge of g: vertical edges in column scan
// order (x, then y) followed by horizontal edges in row scan order.
func Edges(g *grid.Grid) []Edge {
	return buildEdges(g).edges
}

func buildEdges(g *grid.Grid) *edgeSet {
	w, h := g.Width(), g.Height()
	s := &edgeSet{
		vertical:   make(map[int][]int),
		horizontal: make(map[int][]int),
		stride:     w + 1,
	}
	add := func(e Edge, index map[int][]int) {
		e.Polygon = Unassigned
		k := s.hash(e.Start())
		index[k] = append(index[k], len(s.edges))
		s.edges = append(s.edges, e)
	}

	for x := 0; x <= w; x++ {
		for y := range h {
			left, right := g.At(x-1, y), g.At(x, y)
			switch {
			case right && !left:
				add(Edge{X1: x, Y1: y + 1, X2: x, Y2: y, Sign: -1}, s.vertical)
			case left && !right:
				add(Edge{X1: x, Y1: y, X2: x, Y2: y + 1, Sign: 1}, s.vertical)
			}
		}
	}
	s.nVertical = len(s.edges)

	for y := 0; y <= h; y++ {
		for x := range w {
			below, above := g.At(x, y-1), g.At(x, y)
			switch {
			case above && !below:
				add(Edge{X1: x, Y1: y, X2: x + 1, Y2: y, Sign: 1}, s.horizontal)
			case below && !above:
				add(Edge{X1: x + 1, Y1: y, X2: x, Y2: y, Sign: -1}, s.horizontal)
			}
		}
	}
	return s
}

// next returns the edge continuing e. Where two edges leave the same corner
// (cells touching only diagonally) the sharpest left turn wins, which keeps
// diagonal neighbours in separate loops.
func (s *edgeSet) next(e *Edge) int {
	k := s.hash(e.End())
	d := e.Dir()
	best, bestScore := -1, -1
	for _, index := range []map[int][]int{s.vertical, s.horizontal} {
		for _, i := range index[k] {
			n := s.edges[i].Dir()
			cross := d.X*n.Y - d.Y*n.X
			score := 1
			switch {
			case cross > 0:
				score = 2
			case cross < 0:
				score = 0
			case d.X*n.X+d.Y*n.Y < 0:
				continue
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
	}
	return best
}
