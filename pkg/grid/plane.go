package grid

import (
	"fmt"
	"image"

	vmath "github.com/Faultbox/voxmesh/pkg/math"
)

// Axis names one of the three voxel axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// String returns "x", "y" or "z".
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Plane identifies one slice of voxel faces: all faces pointing along Axis
// (in the positive or negative direction) of voxels at the given Depth.
//
// Plane space uses the two remaining axes in cyclic order, U = Axis+1 and
// V = Axis+2, so a counter-clockwise triangle in (u, v) faces +Axis.
type Plane struct {
	Axis     Axis
	Positive bool
	Depth    int
}

// String returns a compact name such as "+x@3".
func (p Plane) String() string {
	sign := "-"
	if p.Positive {
		sign = "+"
	}
	return fmt.Sprintf("%s%s@%d", sign, p.Axis, p.Depth)
}

// UAxis returns the voxel axis mapped to plane u.
func (p Plane) UAxis() Axis { return (p.Axis + 1) % 3 }

// VAxis returns the voxel axis mapped to plane v.
func (p Plane) VAxis() Axis { return (p.Axis + 2) % 3 }

// Normal returns the outward face normal.
func (p Plane) Normal() [3]int {
	var n [3]int
	if p.Positive {
		n[p.Axis] = 1
	} else {
		n[p.Axis] = -1
	}
	return n
}

// Project returns the plane cell of a voxel position.
func (p Plane) Project(pos [3]int) image.Point {
	return image.Pt(pos[p.UAxis()], pos[p.VAxis()])
}

// Voxel returns the voxel position owning plane cell (u, v).
func (p Plane) Voxel(u, v int) [3]int {
	var pos [3]int
	pos[p.Axis] = p.Depth
	pos[p.UAxis()] = u
	pos[p.VAxis()] = v
	return pos
}

// Point returns the 3D position of plane corner (u, v). Faces of the
// positive side sit one unit further along the axis than the voxel origin.
func (p Plane) Point(u, v float64) vmath.Vec3 {
	var c [3]float64
	c[p.Axis] = float64(p.Depth)
	if p.Positive {
		c[p.Axis]++
	}
	c[p.UAxis()] = u
	c[p.VAxis()] = v
	return vmath.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// Less orders planes by axis, then facing, then depth.
func (p Plane) Less(o Plane) bool {
	if p.Axis != o.Axis {
		return p.Axis < o.Axis
	}
	if p.Positive != o.Positive {
		return !p.Positive
	}
	return p.Depth < o.Depth
}
