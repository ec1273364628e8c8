package polygon

import (
	"image"
	"testing"

	"github.com/Faultbox/voxmesh/pkg/grid"
)

func checkClosed(t *testing.T, r Ring) {
	t.Helper()
	if len(r) < 4 {
		t.Fatalf("ring has %d corners, want at least 4", len(r))
	}
	for i, p := range r {
		q := r[(i+1)%len(r)]
		if (p.X == q.X) == (p.Y == q.Y) {
			t.Errorf("corners %v -> %v are not joined by an axis-aligned step", p, q)
		}
	}
}

func TestExtractSingleCell(t *testing.T) {
	polys := Extract(grid.FromRows("#"))
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	p := polys[0]
	checkClosed(t, p.Outline)
	if len(p.Outline) != 4 {
		t.Errorf("expected 4 corners, got %d", len(p.Outline))
	}
	if p.Outline.Area2() != 2 {
		t.Errorf("expected doubled area 2, got %d", p.Outline.Area2())
	}
	if len(p.Holes) != 0 {
		t.Errorf("expected no holes, got %d", len(p.Holes))
	}
}

func TestExtractHole(t *testing.T) {
	polys := Extract(grid.FromRows(
		"###",
		"#.#",
		"###",
	))
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	p := polys[0]
	if len(p.Holes) != 1 {
		t.Fatalf("expected 1 hole, got %d", len(p.Holes))
	}
	checkClosed(t, p.Outline)
	checkClosed(t, p.Holes[0])
	if len(p.Outline) != 4 || len(p.Holes[0]) != 4 {
		t.Errorf("expected 4+4 corners, got %d+%d", len(p.Outline), len(p.Holes[0]))
	}
	if p.Vertices() != 8 {
		t.Errorf("expected 8 vertices in total, got %d", p.Vertices())
	}
	if p.Area() != 8 {
		t.Errorf("expected area 8, got %v", p.Area())
	}
	if b := p.Holes[0].Bounds(); b != image.Rect(1, 1, 2, 2) {
		t.Errorf("unexpected hole bounds %v", b)
	}
}

func TestExtractHoleWindingOppositeOutline(t *testing.T) {
	g := grid.FromRows(
		"#######",
		"#..#..#",
		"#..#..#",
		"#######",
		"#.....#",
		"#######",
	)
	polys := Extract(g)
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	p := polys[0]
	if len(p.Holes) != 3 {
		t.Fatalf("expected 3 holes, got %d", len(p.Holes))
	}
	if p.Outline.Area2() <= 0 {
		t.Errorf("outline should wind counter-clockwise, doubled area %d", p.Outline.Area2())
	}
	for i, h := range p.Holes {
		checkClosed(t, h)
		if h.Area2() >= 0 {
			t.Errorf("hole %d should wind clockwise, doubled area %d", i, h.Area2())
		}
	}
	if int(p.Area()) != g.Count() {
		t.Errorf("expected polygon area %d, got %v", g.Count(), p.Area())
	}
}

func TestExtractSeparatesDiagonalNeighbours(t *testing.T) {
	polys := Extract(grid.FromRows(
		".#",
		"#.",
	))
	if len(polys) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(polys))
	}
	for i, p := range polys {
		if len(p.Outline) != 4 {
			t.Errorf("polygon %d: expected 4 corners, got %d", i, len(p.Outline))
		}
	}
}

func TestExtractCornerOpeningIsNotAHole(t *testing.T) {
	g := grid.FromRows(
		"##.",
		"#.#",
		"###",
	)
	polys := Extract(g)
	if len(polys) != 1 {
		t.Fatalf("expected 1 polygon, got %d", len(polys))
	}
	if len(polys[0].Holes) != 0 {
		t.Errorf("expected no holes, got %d", len(polys[0].Holes))
	}
	if int(polys[0].Area()) != g.Count() {
		t.Errorf("expected area %d, got %v", g.Count(), polys[0].Area())
	}
}

func TestExtractNestedPolygon(t *testing.T) {
	g := grid.FromRows(
		"#####",
		"#...#",
		"#.#.#",
		"#...#",
		"#####",
	)
	polys := Extract(g)
	if len(polys) != 2 {
		t.Fatalf("expected 2 polygons, got %d", len(polys))
	}
	if len(polys[0].Holes) != 1 || len(polys[1].Holes) != 0 {
		t.Errorf("expected ring with one hole and an island, got %d and %d holes",
			len(polys[0].Holes), len(polys[1].Holes))
	}
	total := polys[0].Area() + polys[1].Area()
	if int(total) != g.Count() {
		t.Errorf("expected total area %d, got %v", g.Count(), total)
	}
}

func TestEdgesOneStepPerBoundary(t *testing.T) {
	edges := Edges(grid.FromRows("##"))
	// 2 cells: 2 vertical + 4 horizontal unit edges.
	if len(edges) != 6 {
		t.Fatalf("expected 6 edges, got %d", len(edges))
	}
	for _, e := range edges {
		if e.Polygon != Unassigned {
			t.Errorf("expected unassigned polygon id, got %d", e.Polygon)
		}
		d := e.Dir()
		if d.X*d.X+d.Y*d.Y != 1 {
			t.Errorf("edge %+v is not a unit step", e)
		}
	}
	if !edges[0].Vertical() || edges[0].Sign != -1 {
		t.Errorf("expected first edge to be the downward left side, got %+v", edges[0])
	}
}

func TestExtractEmpty(t *testing.T) {
	if polys := Extract(grid.New(3, 3)); len(polys) != 0 {
		t.Errorf("expected no polygons, got %d", len(polys))
	}
}
