// Package mesh turns occupancy grids into triangle lists that cover exactly
// the occupied cells.
//
// Every strategy treats its input as read-only: the scans that consume cells
// run on a private clone, so one grid can be meshed by several strategies.
package mesh

import (
	"fmt"
	"image"
	"sort"
	"strings"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

// Triangle holds three grid corners in counter-clockwise order.
type Triangle [3]image.Point

// Area2 returns twice the signed area.
func (t Triangle) Area2() int {
	a, b, c := t[0], t[1], t[2]
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Area returns the signed area.
func (t Triangle) Area() float64 {
	return float64(t.Area2()) / 2
}

// Bounds returns the bounding rectangle of the corners.
func (t Triangle) Bounds() image.Rectangle {
	b := image.Rectangle{Min: t[0], Max: t[0]}
	for _, p := range t[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	return b
}

// Translate shifts all corners by d.
func (t Triangle) Translate(d image.Point) Triangle {
	return Triangle{t[0].Add(d), t[1].Add(d), t[2].Add(d)}
}

// ccw returns the triangle in counter-clockwise order and false when the
// corners are collinear.
func ccw(a, b, c image.Point) (Triangle, bool) {
	t := Triangle{a, b, c}
	switch area := t.Area2(); {
	case area > 0:
		return t, true
	case area < 0:
		return Triangle{a, c, b}, true
	}
	return t, false
}

// RectTriangles splits a rectangle along its rising diagonal.
func RectTriangles(r image.Rectangle) [2]Triangle {
	return [2]Triangle{
		{r.Min, image.Pt(r.Max.X, r.Min.Y), r.Max},
		{r.Min, r.Max, image.Pt(r.Min.X, r.Max.Y)},
	}
}

func rectsToTriangles(rects []image.Rectangle) []Triangle {
	tris := make([]Triangle, 0, 2*len(rects))
	for _, r := range rects {
		rt := RectTriangles(r)
		tris = append(tris, rt[0], rt[1])
	}
	return tris
}

// TotalArea sums the triangle areas.
func TotalArea(tris []Triangle) float64 {
	a := 0
	for _, t := range tris {
		a += t.Area2()
	}
	return float64(a) / 2
}

// Mesher turns a grid into triangles covering exactly its occupied cells.
type Mesher interface {
	Mesh(g *grid.Grid) []Triangle
}

// MesherFunc adapts a function to Mesher.
type MesherFunc func(g *grid.Grid) []Triangle

// Mesh calls f(g).
func (f MesherFunc) Mesh(g *grid.Grid) []Triangle { return f(g) }

var builtin = map[string]Mesher{
	"naive":    MesherFunc(Naive),
	"greedy":   MesherFunc(Greedy),
	"monotone": MesherFunc(Monotone),
	"optimal":  MesherFunc(Optimal),
}

// Lookup returns a built-in strategy by name.
func Lookup(name string) (Mesher, bool) {
	m, ok := builtin[strings.ToLower(name)]
	return m, ok
}

// Names lists the built-in strategies.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mustRect(r image.Rectangle) {
	if r.Empty() {
		panic(fmt.Sprintf("mesh: empty rectangle %v", r))
	}
}
