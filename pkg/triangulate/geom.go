package triangulate

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// tolerance for orientation tests; perturbed points sit about 1e-3 from
// the lattice, far above it.
const tolerance = 1e-9

func prev(i, n int) int {
	if i-1 >= 0 {
		return i - 1
	}
	return n - 1
}

func next(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

// area2 returns twice the signed area of abc, positive when counter-clockwise.
func area2(a, b, c mgl64.Vec2) float64 {
	u, v := b.Sub(a), c.Sub(a)
	return u[0]*v[1] - u[1]*v[0]
}

// left reports whether c is strictly left of the directed line a->b.
func left(a, b, c mgl64.Vec2) bool { return area2(a, b, c) > tolerance }

func leftOn(a, b, c mgl64.Vec2) bool { return area2(a, b, c) >= -tolerance }

func collinear(a, b, c mgl64.Vec2) bool { return math.Abs(area2(a, b, c)) <= tolerance }

// intersectProp reports whether ab and cd share a point interior to both.
func intersectProp(a, b, c, d mgl64.Vec2) bool {
	if collinear(a, b, c) || collinear(a, b, d) || collinear(c, d, a) || collinear(c, d, b) {
		return false
	}
	return left(a, b, c) != left(a, b, d) && left(c, d, a) != left(c, d, b)
}

// between reports whether c lies on the closed segment ab.
func between(a, b, c mgl64.Vec2) bool {
	if !collinear(a, b, c) {
		return false
	}
	if math.Abs(a[0]-b[0]) > tolerance {
		return (a[0] <= c[0] && c[0] <= b[0]) || (a[0] >= c[0] && c[0] >= b[0])
	}
	return (a[1] <= c[1] && c[1] <= b[1]) || (a[1] >= c[1] && c[1] >= b[1])
}

// intersect reports whether ab and cd intersect, properly or improperly.
func intersect(a, b, c, d mgl64.Vec2) bool {
	if intersectProp(a, b, c, d) {
		return true
	}
	return between(a, b, c) || between(a, b, d) || between(c, d, a) || between(c, d, b)
}

// inCone reports whether the segment from ring[i] to p is strictly inside
// the ring in the neighbourhood of ring[i].
func inCone(verts []mgl64.Vec2, ring []int, i int, p mgl64.Vec2) bool {
	n := len(ring)
	pi := verts[ring[i]]
	pi1 := verts[ring[next(i, n)]]
	pin1 := verts[ring[prev(i, n)]]

	// convex corner
	if leftOn(pin1, pi, pi1) {
		return left(pi, p, pin1) && left(p, pi, pi1)
	}
	return !(leftOn(pi, p, pi1) && leftOn(p, pi, pin1))
}

func inConeLoose(verts []mgl64.Vec2, ring []int, i int, p mgl64.Vec2) bool {
	n := len(ring)
	pi := verts[ring[i]]
	pi1 := verts[ring[next(i, n)]]
	pin1 := verts[ring[prev(i, n)]]

	if leftOn(pin1, pi, pi1) {
		return leftOn(pi, p, pin1) && leftOn(p, pi, pi1)
	}
	return !(leftOn(pi, p, pi1) && leftOn(p, pi, pin1))
}

func lenSqr(v mgl64.Vec2) float64 { return v.Dot(v) }

// crossesRing reports whether the segment between vertices a and b hits an
// edge of ring. Edges touching a or b are ignored.
func crossesRing(verts []mgl64.Vec2, ring []int, a, b int) bool {
	d0, d1 := verts[a], verts[b]
	n := len(ring)
	for k := range n {
		k0, k1 := ring[k], ring[next(k, n)]
		if k0 == a || k0 == b || k1 == a || k1 == b {
			continue
		}
		if intersect(d0, d1, verts[k0], verts[k1]) {
			return true
		}
	}
	return false
}
