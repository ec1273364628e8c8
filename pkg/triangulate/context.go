package triangulate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrNotPrepared    = errors.New("triangulate: context not prepared")
	ErrBusy           = errors.New("triangulate: context already holds a polygon")
	ErrTooFewPoints   = errors.New("triangulate: ring has fewer than 3 points")
	ErrDuplicatePoint = errors.New("triangulate: duplicate point")
	ErrNoBridge       = errors.New("triangulate: hole cannot be bridged to the outline")
	ErrNoEar          = errors.New("triangulate: no ear found")
)

// Triangle holds three corners in counter-clockwise order.
type Triangle [3]mgl64.Vec2

// Context triangulates one polygon with holes at a time by bridging the
// holes into the outline and clipping ears. A context goes through
// Prepare, Run and Clear for every polygon and is not safe for concurrent
// use.
type Context struct {
	verts    []mgl64.Vec2
	rings    [][]int
	tris     [][3]int
	prepared bool
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// Prepare loads a polygon: the first ring is the counter-clockwise outline,
// the rest are clockwise holes. Coincident points are rejected.
func (c *Context) Prepare(rings [][]mgl64.Vec2) error {
	if c.prepared {
		return ErrBusy
	}
	if len(rings) == 0 {
		return ErrTooFewPoints
	}
	seen := make(map[mgl64.Vec2]bool)
	for _, r := range rings {
		if len(r) < 3 {
			return ErrTooFewPoints
		}
		ids := make([]int, len(r))
		for i, p := range r {
			if seen[p] {
				return fmt.Errorf("%w at (%g,%g)", ErrDuplicatePoint, p[0], p[1])
			}
			seen[p] = true
			ids[i] = len(c.verts)
			c.verts = append(c.verts, p)
		}
		c.rings = append(c.rings, ids)
	}
	c.prepared = true
	return nil
}

// Run triangulates the prepared polygon.
func (c *Context) Run() error {
	if !c.prepared {
		return ErrNotPrepared
	}
	ring, err := c.bridgeHoles()
	if err != nil {
		return err
	}
	c.tris, err = c.clipEars(ring)
	return err
}

// Triangles returns the result of the last Run.
func (c *Context) Triangles() []Triangle {
	out := make([]Triangle, 0, len(c.tris))
	for _, t := range c.tris {
		out = append(out, Triangle{c.verts[t[0]], c.verts[t[1]], c.verts[t[2]]})
	}
	return out
}

// Clear drops the polygon and result so the context can be reused.
func (c *Context) Clear() {
	c.verts = c.verts[:0]
	c.rings = c.rings[:0]
	c.tris = c.tris[:0]
	c.prepared = false
}

type hole struct {
	ring     []int
	leftmost int
}

// bridgeHoles merges the holes into the outline from left to right. Each
// hole is joined through the shortest segment from one of its vertices to
// an outline vertex that sees it and crosses no edge.
func (c *Context) bridgeHoles() ([]int, error) {
	outline := append([]int(nil), c.rings[0]...)
	holes := make([]hole, 0, len(c.rings)-1)
	for _, r := range c.rings[1:] {
		h := hole{ring: r}
		for i, v := range r {
			p, q := c.verts[v], c.verts[r[h.leftmost]]
			if p[0] < q[0] || (p[0] == q[0] && p[1] < q[1]) {
				h.leftmost = i
			}
		}
		holes = append(holes, h)
	}
	sort.SliceStable(holes, func(i, j int) bool {
		a, b := c.verts[holes[i].ring[holes[i].leftmost]], c.verts[holes[j].ring[holes[j].leftmost]]
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return a[1] < b[1]
	})

	for hi, h := range holes {
		at, from := -1, -1
		best := h.leftmost
		for range len(h.ring) {
			corner := h.ring[best]
			cp := c.verts[corner]
			type candidate struct {
				pos  int
				dist float64
			}
			var cands []candidate
			for j := range outline {
				if inCone(c.verts, outline, j, cp) {
					cands = append(cands, candidate{j, lenSqr(c.verts[outline[j]].Sub(cp))})
				}
			}
			sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

			for _, cd := range cands {
				v := outline[cd.pos]
				blocked := crossesRing(c.verts, outline, v, corner)
				for k := hi; k < len(holes) && !blocked; k++ {
					blocked = crossesRing(c.verts, holes[k].ring, v, corner)
				}
				if !blocked {
					at = cd.pos
					break
				}
			}
			if at >= 0 {
				from = best
				break
			}
			best = next(best, len(h.ring))
		}
		if at < 0 {
			return nil, ErrNoBridge
		}

		merged := make([]int, 0, len(outline)+len(h.ring)+2)
		merged = append(merged, outline[:at+1]...)
		for i := range len(h.ring) + 1 {
			merged = append(merged, h.ring[(from+i)%len(h.ring)])
		}
		merged = append(merged, outline[at:]...)
		outline = merged
	}
	return outline, nil
}

// diagonal reports whether ring[i]-ring[j] is a proper internal diagonal.
func (c *Context) diagonal(ring []int, i, j int) bool {
	return inCone(c.verts, ring, i, c.verts[ring[j]]) && !crossesRing(c.verts, ring, ring[i], ring[j])
}

// diagonalLoose accepts diagonals that only touch the boundary.
func (c *Context) diagonalLoose(ring []int, i, j int) bool {
	if !inConeLoose(c.verts, ring, i, c.verts[ring[j]]) {
		return false
	}
	a, b := ring[i], ring[j]
	n := len(ring)
	for k := range n {
		k0, k1 := ring[k], ring[next(k, n)]
		if k0 == a || k0 == b || k1 == a || k1 == b {
			continue
		}
		if intersectProp(c.verts[a], c.verts[b], c.verts[k0], c.verts[k1]) {
			return false
		}
	}
	return true
}

// clipEars repeatedly cuts the ear with the shortest diagonal.
func (c *Context) clipEars(ring []int) ([][3]int, error) {
	ring = append([]int(nil), ring...)
	n := len(ring)
	ear := make([]bool, n)
	for i := range n {
		ear[next(i, n)] = c.diagonal(ring, i, next(next(i, n), n))
	}

	var tris [][3]int
	for n > 3 {
		mini := -1
		minLen := 0.0
		for i := range n {
			i1 := next(i, n)
			if !ear[i1] {
				continue
			}
			l := lenSqr(c.verts[ring[next(i1, n)]].Sub(c.verts[ring[i]]))
			if mini < 0 || l < minLen {
				mini, minLen = i, l
			}
		}
		if mini < 0 {
			// overlapping bridge edges can hide every strict ear; retry
			// with a cone test that accepts touching diagonals
			for i := range n {
				i2 := next(next(i, n), n)
				if !c.diagonalLoose(ring, i, i2) {
					continue
				}
				l := lenSqr(c.verts[ring[i2]].Sub(c.verts[ring[i]]))
				if mini < 0 || l < minLen {
					mini, minLen = i, l
				}
			}
		}
		if mini < 0 {
			return nil, fmt.Errorf("%w with %d vertices left", ErrNoEar, n)
		}

		i := mini
		i1 := next(i, n)
		i2 := next(i1, n)
		tris = append(tris, [3]int{ring[i], ring[i1], ring[i2]})

		ring = append(ring[:i1], ring[i1+1:]...)
		ear = append(ear[:i1], ear[i1+1:]...)
		n--
		if i1 >= n {
			i1 = 0
		}
		i = prev(i1, n)
		ear[i] = c.diagonal(ring, prev(i, n), i1)
		ear[i1] = c.diagonal(ring, i, next(i1, n))
	}
	tris = append(tris, [3]int{ring[0], ring[1], ring[2]})
	return tris, nil
}
