// Package grid provides the 2D occupancy grids that meshing works on and the
// plane geometry that maps them back into voxel space.
package grid

import (
	"fmt"
	"strings"
)

// Grid is a rectangular boolean occupancy grid indexed [x][y].
// Dimensions are fixed for the lifetime of the grid.
type Grid struct {
	w, h  int
	cells []bool // x-major: cells[x*h+y]
}

// New returns an empty grid of the given size.
func New(w, h int) *Grid {
	if w < 0 || h < 0 {
		panic(fmt.Sprintf("grid: invalid size %dx%d", w, h))
	}
	return &Grid{w: w, h: h, cells: make([]bool, w*h)}
}

// FromCells builds a grid from an [x][y] slice. Every column must have the
// same length.
func FromCells(cells [][]bool) *Grid {
	w := len(cells)
	h := 0
	if w > 0 {
		h = len(cells[0])
	}
	g := New(w, h)
	for x, col := range cells {
		if len(col) != h {
			panic(fmt.Sprintf("grid: column %d has %d cells, want %d", x, len(col), h))
		}
		copy(g.cells[x*h:(x+1)*h], col)
	}
	return g
}

// FromRows parses a picture of a grid. rows[0] is the top row (highest y);
// '#' marks an occupied cell, anything else an empty one.
func FromRows(rows ...string) *Grid {
	h := len(rows)
	w := 0
	if h > 0 {
		w = len(rows[0])
	}
	g := New(w, h)
	for i, row := range rows {
		if len(row) != w {
			panic(fmt.Sprintf("grid: row %d has %d cells, want %d", i, len(row), w))
		}
		y := h - 1 - i
		for x := range w {
			g.cells[x*h+y] = row[x] == '#'
		}
	}
	return g
}

// Width returns the size along x.
func (g *Grid) Width() int { return g.w }

// Height returns the size along y.
func (g *Grid) Height() int { return g.h }

// In reports whether (x, y) lies inside the grid.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.w && y < g.h
}

// At returns the occupancy of (x, y). Cells outside the grid are empty.
func (g *Grid) At(x, y int) bool {
	if !g.In(x, y) {
		return false
	}
	return g.cells[x*g.h+y]
}

// Set changes the occupancy of (x, y).
func (g *Grid) Set(x, y int, v bool) {
	if !g.In(x, y) {
		panic(fmt.Sprintf("grid: cell (%d,%d) outside %dx%d", x, y, g.w, g.h))
	}
	g.cells[x*g.h+y] = v
}

// Consume clears (x, y) and reports whether it was occupied.
func (g *Grid) Consume(x, y int) bool {
	if !g.At(x, y) {
		return false
	}
	g.cells[x*g.h+y] = false
	return true
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{w: g.w, h: g.h, cells: make([]bool, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is occupied.
func (g *Grid) Empty() bool {
	for _, c := range g.cells {
		if c {
			return false
		}
	}
	return true
}

// Equal reports whether both grids have the same size and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.w != o.w || g.h != o.h {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// String renders the grid in the FromRows format.
func (g *Grid) String() string {
	var sb strings.Builder
	for y := g.h - 1; y >= 0; y-- {
		for x := range g.w {
			if g.At(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		if y > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
