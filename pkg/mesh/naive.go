package mesh

import (
	"image"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Naive emits two triangles per occupied cell.
func Naive(g *grid.Grid) []Triangle {
	tris := make([]Triangle, 0, 2*g.Count())
	for x := range g.Width() {
		for y := range g.Height() {
			if !g.At(x, y) {
				continue
			}
			rt := RectTriangles(image.Rect(x, y, x+1, y+1))
			tris = append(tris, rt[0], rt[1])
		}
	}
	return tris
}
