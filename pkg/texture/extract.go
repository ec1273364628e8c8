package texture

import (
	"fmt"
	"math"

	"github.com/Faultbox/voxmesh/pkg/grid"
	vmath "github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/mesh"
)

// Lookup returns the packed color of the voxel at a position.
type Lookup func(pos [3]int) (uint32, bool)

// Texture is the pixel buffer of one triangle with the texture coordinates
// of its three corners, normalized to the buffer.
type Texture struct {
	Buf *Buffer
	UV  [3]vmath.Vec2
}

// single is the fixed mapping for one-pixel textures.
var single = [3]vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

// Extract samples the voxels under tri, given in plane coordinates of p.
// Every cell sharing area with the triangle is looked up; a missing voxel
// means the triangle does not match the grid it came from, and Extract
// panics.
func Extract(p grid.Plane, tri mesh.Triangle, lookup Lookup) *Texture {
	b := tri.Bounds()
	if b.Empty() {
		panic(fmt.Sprintf("texture: degenerate triangle %v", tri))
	}
	t := &Texture{Buf: NewBuffer(b.Dx(), b.Dy())}
	var corners [3]vmath.Vec2
	for i, c := range tri {
		corners[i] = vmath.Vec2{X: float64(c.X - b.Min.X), Y: float64(c.Y - b.Min.Y)}
		t.UV[i] = vmath.Vec2{X: corners[i].X / float64(b.Dx()), Y: corners[i].Y / float64(b.Dy())}
	}
	for y := range b.Dy() {
		for x := range b.Dx() {
			if !overlaps(corners, float64(x), float64(y)) {
				continue
			}
			pos := p.Voxel(b.Min.X+x, b.Min.Y+y)
			c, ok := lookup(pos)
			if !ok || c == 0 {
				panic(fmt.Sprintf("texture: no voxel at %v under %v on %s", pos, tri, p))
			}
			t.Buf.Set(x, y, c)
		}
	}
	if t.Buf.W*t.Buf.H == 1 {
		t.UV = single
	}
	return t
}

// Pixel returns the pixel-space position of normalized coordinate uv.
func (t *Texture) Pixel(uv vmath.Vec2) vmath.Vec2 {
	return vmath.Vec2{X: uv.X * float64(t.Buf.W), Y: uv.Y * float64(t.Buf.H)}
}

// Sample returns the pixel under uv.
func (t *Texture) Sample(uv vmath.Vec2) uint32 {
	p := t.Pixel(uv)
	x := min(int(math.Floor(p.X)), t.Buf.W-1)
	y := min(int(math.Floor(p.Y)), t.Buf.H-1)
	return t.Buf.At(x, y)
}

// Footprint reports which pixels share area with the triangle spanned by
// the texture coordinates.
func (t *Texture) Footprint() []bool {
	var corners [3]vmath.Vec2
	for i, uv := range t.UV {
		corners[i] = t.Pixel(uv)
	}
	in := make([]bool, t.Buf.W*t.Buf.H)
	for y := range t.Buf.H {
		for x := range t.Buf.W {
			in[y*t.Buf.W+x] = overlaps(corners, float64(x), float64(y))
		}
	}
	return in
}

const overlapEps = 1e-9

// overlaps reports whether triangle tri and the unit cell at (x, y) share
// positive area, by looking for a separating axis among the cell sides and
// the triangle edge normals.
func overlaps(tri [3]vmath.Vec2, x, y float64) bool {
	cell := [4]vmath.Vec2{{X: x, Y: y}, {X: x + 1, Y: y}, {X: x + 1, Y: y + 1}, {X: x, Y: y + 1}}
	axes := []vmath.Vec2{{X: 1}, {Y: 1}}
	for i := range 3 {
		e := tri[(i+1)%3].Sub(tri[i])
		axes = append(axes, vmath.Vec2{X: -e.Y, Y: e.X})
	}
	for _, ax := range axes {
		tmin, tmax := span(ax, tri[:])
		cmin, cmax := span(ax, cell[:])
		if tmax <= cmin+overlapEps || cmax <= tmin+overlapEps {
			return false
		}
	}
	return true
}

func span(axis vmath.Vec2, pts []vmath.Vec2) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := axis.Dot(p)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}
