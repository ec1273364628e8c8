package mesh

import (
	"fmt"
	"math"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Sample offsets inside a cell. Irrational offsets never fall on a line
// through two grid corners, so every sample is strictly inside or outside
// each triangle.
var (
	sampleDX = 0.5 + math.Sqrt2/100
	sampleDY = 0.5 + math.Sqrt(3)/100
)

func sampleInside(t Triangle, px, py float64) bool {
	side := func(a, b [2]float64) float64 {
		return (b[0]-a[0])*(py-a[1]) - (b[1]-a[1])*(px-a[0])
	}
	p := [3][2]float64{}
	for i, c := range t {
		p[i] = [2]float64{float64(c.X), float64(c.Y)}
	}
	return side(p[0], p[1]) > 0 && side(p[1], p[2]) > 0 && side(p[2], p[0]) > 0
}

// Coverage counts, for each cell of a w x h grid, how many triangles cover
// it. The result is indexed [x*h+y].
func Coverage(tris []Triangle, w, h int) []int {
	counts := make([]int, w*h)
	for _, t := range tris {
		if t.Area2() <= 0 {
			continue
		}
		b := t.Bounds()
		for x := max(b.Min.X, 0); x < min(b.Max.X, w); x++ {
			for y := max(b.Min.Y, 0); y < min(b.Max.Y, h); y++ {
				if sampleInside(t, float64(x)+sampleDX, float64(y)+sampleDY) {
					counts[x*h+y]++
				}
			}
		}
	}
	return counts
}

// CheckCoverage verifies that tris cover every occupied cell of g exactly
// once, no empty cell, and that their area equals the occupied area.
func CheckCoverage(g *grid.Grid, tris []Triangle) error {
	w, h := g.Width(), g.Height()
	for i, t := range tris {
		if t.Area2() <= 0 {
			return fmt.Errorf("triangle %d %v is not counter-clockwise", i, t)
		}
		b := t.Bounds()
		if b.Min.X < 0 || b.Min.Y < 0 || b.Max.X > w || b.Max.Y > h {
			return fmt.Errorf("triangle %d %v leaves the %dx%d grid", i, t, w, h)
		}
	}
	counts := Coverage(tris, w, h)
	for x := range w {
		for y := range h {
			want := 0
			if g.At(x, y) {
				want = 1
			}
			if got := counts[x*h+y]; got != want {
				return fmt.Errorf("cell (%d,%d) covered %d times, want %d", x, y, got, want)
			}
		}
	}
	if area := TotalArea(tris); area != float64(g.Count()) {
		return fmt.Errorf("triangle area %v, want %d", area, g.Count())
	}
	return nil
}
