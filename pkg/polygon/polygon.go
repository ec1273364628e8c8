// Package polygon turns occupancy grids into rectilinear polygons with holes.
package polygon

import "image"

// Ring is a closed loop of grid corners. The last point connects back to
// the first. Only corners are stored; collinear points are dropped.
type Ring []image.Point

// Area2 returns twice the signed area: positive for counter-clockwise rings.
func (r Ring) Area2() int {
	a := 0
	for i, p := range r {
		q := r[(i+1)%len(r)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a
}

// Area returns the signed area.
func (r Ring) Area() float64 {
	return float64(r.Area2()) / 2
}

// Bounds returns the bounding rectangle of the ring.
func (r Ring) Bounds() image.Rectangle {
	if len(r) == 0 {
		return image.Rectangle{}
	}
	b := image.Rectangle{Min: r[0], Max: r[0]}
	for _, p := range r[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	return b
}

// Polygon is an outline with zero or more holes. The outline winds
// counter-clockwise and holes wind clockwise, so the filled region is always
// on the left of every ring.
type Polygon struct {
	Outline Ring
	Holes   []Ring
}

// Rings returns the outline followed by the holes.
func (p *Polygon) Rings() []Ring {
	rings := make([]Ring, 0, 1+len(p.Holes))
	rings = append(rings, p.Outline)
	return append(rings, p.Holes...)
}

// Vertices returns the number of corners over all rings.
func (p *Polygon) Vertices() int {
	n := len(p.Outline)
	for _, h := range p.Holes {
		n += len(h)
	}
	return n
}

// Area returns the filled area.
func (p *Polygon) Area() float64 {
	a := p.Outline.Area()
	for _, h := range p.Holes {
		a += h.Area()
	}
	return a
}
