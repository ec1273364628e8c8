package atlas

import (
	"image"

	vmath "github.com/Faultbox/voxmesh/pkg/math"
)

// Orientation places a child inside its parent: bit 2 mirrors x first, the
// low two bits count quarter turns counter-clockwise.
type Orientation uint8

// Orientations lists all eight placements.
var Orientations = [8]Orientation{0, 1, 2, 3, 4, 5, 6, 7}

func (o Orientation) flipped() bool { return o&4 != 0 }

func (o Orientation) turns() int { return int(o & 3) }

// Size returns the size of a w x h texture after orientation.
func (o Orientation) Size(w, h int) (int, int) {
	if o.turns()%2 == 1 {
		return h, w
	}
	return w, h
}

// Pixel maps pixel (x, y) of a w x h texture.
func (o Orientation) Pixel(p image.Point, w, h int) image.Point {
	if o.flipped() {
		p.X = w - 1 - p.X
	}
	for range o.turns() {
		p = image.Pt(h-1-p.Y, p.X)
		w, h = h, w
	}
	return p
}

// Point maps a continuous position inside a w x h texture.
func (o Orientation) Point(p vmath.Vec2, w, h int) vmath.Vec2 {
	fw, fh := float64(w), float64(h)
	if o.flipped() {
		p.X = fw - p.X
	}
	for range o.turns() {
		p = vmath.Vec2{X: fh - p.Y, Y: p.X}
		fw, fh = fh, fw
	}
	return p
}
