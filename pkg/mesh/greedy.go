package mesh

import (
	"image"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// GreedyRects covers the occupied cells with rectangles by run merging: from
// each remaining cell grow along +x while cells are set, then grow that run
// along +y while every cell of the next row is set. Covered cells are
// consumed from a private copy of g.
func GreedyRects(g *grid.Grid) []image.Rectangle {
	work := g.Clone()
	w, h := work.Width(), work.Height()
	var rects []image.Rectangle
	for y := range h {
		for x := range w {
			if !work.At(x, y) {
				continue
			}
			x2 := x + 1
			for x2 < w && work.At(x2, y) {
				x2++
			}
			y2 := y + 1
		grow:
			for y2 < h {
				for i := x; i < x2; i++ {
					if !work.At(i, y2) {
						break grow
					}
				}
				y2++
			}
			for i := x; i < x2; i++ {
				for j := y; j < y2; j++ {
					work.Consume(i, j)
				}
			}
			r := image.Rect(x, y, x2, y2)
			mustRect(r)
			rects = append(rects, r)
		}
	}
	return rects
}

// Greedy meshes g with GreedyRects, two triangles per rectangle.
func Greedy(g *grid.Grid) []Triangle {
	return rectsToTriangles(GreedyRects(g))
}
