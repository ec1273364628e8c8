package grid

import "image"

// Layer is the occupancy of one plane, cropped to the bounding box of its
// cells. Grid cell (x, y) is plane cell Origin + (x, y).
type Layer struct {
	Plane  Plane
	Origin image.Point
	Grid   *Grid
}

// Build projects plane cells into a cropped occupancy grid.
func Build(plane Plane, cells []image.Point) *Layer {
	if len(cells) == 0 {
		return &Layer{Plane: plane, Grid: New(0, 0)}
	}
	bounds := image.Rectangle{Min: cells[0], Max: cells[0].Add(image.Pt(1, 1))}
	for _, c := range cells[1:] {
		bounds = bounds.Union(image.Rectangle{Min: c, Max: c.Add(image.Pt(1, 1))})
	}
	g := New(bounds.Dx(), bounds.Dy())
	for _, c := range cells {
		g.Set(c.X-bounds.Min.X, c.Y-bounds.Min.Y, true)
	}
	return &Layer{Plane: plane, Origin: bounds.Min, Grid: g}
}

// Voxel returns the voxel position of grid cell (x, y).
func (l *Layer) Voxel(x, y int) [3]int {
	return l.Plane.Voxel(l.Origin.X+x, l.Origin.Y+y)
}
