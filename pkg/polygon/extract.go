package polygon

import (
	"fmt"
	"image"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Extract converts an occupancy grid into polygons with holes, one polygon
// per 4-connected group of occupied cells. Cells touching only at a corner
// belong to different polygons; empty cells touching only at a corner are
// treated as connected, so such an opening does not form a hole.
//
// Vertical edges are visited in column scan order. An unvisited downward
// edge is the leftmost boundary of a new polygon; an unvisited upward edge is
// the leftmost boundary of a hole, owned by the polygon whose run the scan
// is currently inside on that row. The grid is not modified.
func Extract(g *grid.Grid) []Polygon {
	s := buildEdges(g)
	var polys []Polygon

	rowOwner := make([]int, g.Height())
	for i := range rowOwner {
		rowOwner[i] = Unassigned
	}

	for i := 0; i < s.nVertical; i++ {
		e := &s.edges[i]
		row := min(e.Y1, e.Y2)
		if e.Polygon == Unassigned {
			if e.Sign < 0 {
				id := len(polys)
				polys = append(polys, Polygon{Outline: s.walk(i, id)})
			} else {
				owner := rowOwner[row]
				if owner == Unassigned {
					panic(fmt.Sprintf("polygon: hole edge at (%d,%d) has no enclosing polygon", e.X1, e.Y1))
				}
				polys[owner].Holes = append(polys[owner].Holes, s.walk(i, owner))
			}
		}
		if e.Sign < 0 {
			rowOwner[row] = e.Polygon
		}
	}

	for i := range s.edges {
		if s.edges[i].Polygon == Unassigned {
			e := &s.edges[i]
			panic(fmt.Sprintf("polygon: edge (%d,%d)-(%d,%d) not on any loop", e.X1, e.Y1, e.X2, e.Y2))
		}
	}
	return polys
}

// walk follows the loop starting at edge start, tags every edge with id and
// returns the loop's corners.
func (s *edgeSet) walk(start, id int) Ring {
	var pts []image.Point
	cur := start
	for {
		e := &s.edges[cur]
		e.Polygon = id
		pts = append(pts, e.Start())
		nxt := s.next(e)
		if nxt < 0 {
			panic(fmt.Sprintf("polygon: loop broken at (%d,%d)", e.X2, e.Y2))
		}
		if nxt == start {
			break
		}
		if s.edges[nxt].Polygon != Unassigned {
			panic(fmt.Sprintf("polygon: loop at (%d,%d) runs into a walked edge", e.X2, e.Y2))
		}
		cur = nxt
	}
	return simplify(pts)
}

// simplify drops points that continue straight on from their predecessor.
func simplify(pts []image.Point) Ring {
	n := len(pts)
	out := make(Ring, 0, n)
	for i, p := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		d1 := p.Sub(prev)
		d2 := next.Sub(p)
		if d1.X*d2.Y-d1.Y*d2.X != 0 {
			out = append(out, p)
		}
	}
	return out
}
