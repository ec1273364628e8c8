// Package atlas packs per-triangle textures into shared images.
//
// Textures live in an arena owned by a Manager and refer to each other by
// ID. A texture either owns its pixels or is placed inside a parent with
// an offset and an orientation; following parents always ends at a texture
// that owns pixels, the root, whose image is the atlas.
package atlas

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sort"

	vmath "github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/texture"
)

// ID addresses a texture in a Manager.
type ID int

// None marks a missing parent.
const None ID = -1

// DefaultNudge is how far, in atlas pixels, corners are pulled toward the
// triangle centroid.
const DefaultNudge = 0.01

// Progress receives coarse progress of a long operation.
type Progress func(stage string, percent int)

type pixel struct {
	p image.Point
	c uint32
}

type entry struct {
	w, h   int
	pix    []pixel  // set pixels in row-major order, nil once placed in a parent
	grid   []uint32 // dense copy of pix, 0 where unset
	mask   uint64   // one bit per colour hash
	parent ID
	offset image.Point
	orient Orientation

	uv        [3]vmath.Vec2
	final     [3]vmath.Vec2
	validated ID
}

func newEntry(w, h int, grid []uint32) entry {
	e := entry{w: w, h: h, grid: grid, parent: None, validated: None}
	for i, c := range grid {
		if c != 0 {
			e.pix = append(e.pix, pixel{image.Pt(i%w, i/w), c})
			e.mask |= colourBit(c)
		}
	}
	return e
}

func colourBit(c uint32) uint64 {
	return 1 << ((c * 0x9e3779b1) >> 26)
}

// at returns the pixel at q, or 0 when q is unset or out of bounds.
func (e *entry) at(q image.Point) uint32 {
	if q.X < 0 || q.Y < 0 || q.X >= e.w || q.Y >= e.h {
		return 0
	}
	return e.grid[q.Y*e.w+q.X]
}

// oriented returns the pixels of e mapped by o.
func (e *entry) oriented(o Orientation) []pixel {
	out := make([]pixel, len(e.pix))
	for i, px := range e.pix {
		out[i] = pixel{o.Pixel(px.p, e.w, e.h), px.c}
	}
	return out
}

// Manager owns all textures of one export.
type Manager struct {
	Nudge    float64
	Progress Progress

	entries []entry
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{Nudge: DefaultNudge}
}

// Add stores a copy of t and returns its id.
func (m *Manager) Add(t *texture.Texture) ID {
	grid := make([]uint32, t.Buf.W*t.Buf.H)
	for y := range t.Buf.H {
		for x := range t.Buf.W {
			grid[y*t.Buf.W+x] = t.Buf.At(x, y)
		}
	}
	e := newEntry(t.Buf.W, t.Buf.H, grid)
	e.uv = t.UV
	return m.push(e)
}

func (m *Manager) push(e entry) ID {
	m.entries = append(m.entries, e)
	return ID(len(m.entries) - 1)
}

func (m *Manager) get(id ID) *entry {
	if id < 0 || int(id) >= len(m.entries) {
		panic(fmt.Sprintf("atlas: unknown texture %d", id))
	}
	return &m.entries[id]
}

// Len returns the number of textures, including merge parents.
func (m *Manager) Len() int { return len(m.entries) }

// Parent returns the texture that id is placed in.
func (m *Manager) Parent(id ID) (ID, bool) {
	p := m.get(id).parent
	return p, p != None
}

// Placement returns the offset and orientation of id inside its parent.
func (m *Manager) Placement(id ID) (image.Point, Orientation) {
	e := m.get(id)
	return e.offset, e.orient
}

// Root returns the top-most ancestor of id.
func (m *Manager) Root(id ID) ID {
	for {
		p := m.get(id).parent
		if p == None {
			return id
		}
		id = p
	}
}

// Roots returns the textures without a parent in id order.
func (m *Manager) Roots() []ID {
	var ids []ID
	for i := range m.entries {
		if m.entries[i].parent == None {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// Size returns the pixel size of id.
func (m *Manager) Size(id ID) (int, int) {
	e := m.get(id)
	return e.w, e.h
}

// Pixels returns the number of set pixels id owns.
func (m *Manager) Pixels(id ID) int { return len(m.get(id).pix) }

// Buffer renders the root of id.
func (m *Manager) Buffer(id ID) *texture.Buffer {
	e := m.get(m.Root(id))
	b := texture.NewBuffer(e.w, e.h)
	for _, px := range e.pix {
		b.Set(px.p.X, px.p.Y, px.c)
	}
	return b
}

// Image renders the root of id as an image.
func (m *Manager) Image(id ID) *image.NRGBA {
	return m.Buffer(id).Image()
}

func (m *Manager) topLevel(id ID) bool {
	e := m.get(id)
	return e.parent == None && e.grid != nil
}

func (e *entry) release(parent ID, off image.Point, o Orientation) {
	e.parent, e.offset, e.orient = parent, off, o
	e.pix, e.grid = nil, nil
}

// fits reports whether every pixel of pts, shifted by off, either lands
// outside dst (when outside is allowed) or on an equal pixel of dst. It
// also counts the pixels that land on equal pixels.
func fits(pts []pixel, dst *entry, off image.Point, outside bool) (int, bool) {
	shared := 0
	for _, px := range pts {
		switch d := dst.at(px.p.Add(off)); {
		case d == px.c:
			shared++
		case d != 0:
			return 0, false
		case !outside:
			return 0, false
		}
	}
	return shared, true
}

// MakeChild looks for candidate's pixels inside parent under one of the
// eight orientations. On success candidate is placed in parent and its
// pixels are dropped. Both must be top-level textures.
func (m *Manager) MakeChild(parent, candidate ID) bool {
	if parent == candidate || !m.topLevel(parent) || !m.topLevel(candidate) {
		return false
	}
	p, c := m.get(parent), m.get(candidate)
	if len(c.pix) > len(p.pix) || c.mask&^p.mask != 0 {
		return false
	}
	for _, o := range Orientations {
		ow, oh := o.Size(c.w, c.h)
		if ow > p.w || oh > p.h {
			continue
		}
		pts := c.oriented(o)
		for dy := 0; dy+oh <= p.h; dy++ {
			for dx := 0; dx+ow <= p.w; dx++ {
				off := image.Pt(dx, dy)
				if _, ok := fits(pts, p, off, false); ok {
					c.release(parent, off, o)
					return true
				}
			}
		}
	}
	return false
}

// unionArea is the area of the box around a w x h texture and a ow x oh
// texture at off.
func unionArea(w, h int, off image.Point, ow, oh int) int {
	return (max(w, off.X+ow) - min(0, off.X)) * (max(h, off.Y+oh) - min(0, off.Y))
}

// Merge places a and b side by side, overlapping where their pixels agree,
// in a new parent texture. b is tried at every placement that touches or
// crosses the border of a; placements strictly inside a are left to
// MakeChild. The chosen placement minimises the area of the parent and
// ties go to the larger overlap. It returns false when a or b is not a
// top-level texture.
func (m *Manager) Merge(a, b ID) (ID, bool) {
	if a == b || !m.topLevel(a) || !m.topLevel(b) {
		return None, false
	}
	ea, eb := m.get(a), m.get(b)

	type placement struct {
		o      Orientation
		off    image.Point
		area   int
		shared int
	}
	// b next to a always fits and bounds the search.
	best := placement{area: math.MaxInt}
	for _, o := range Orientations {
		ow, oh := o.Size(eb.w, eb.h)
		for _, off := range [2]image.Point{{ea.w, 0}, {0, ea.h}} {
			if area := unionArea(ea.w, ea.h, off, ow, oh); area < best.area {
				best = placement{o: o, off: off, area: area}
			}
		}
	}
	for _, o := range Orientations {
		ow, oh := o.Size(eb.w, eb.h)
		pts := eb.oriented(o)
		for dy := -oh; dy <= ea.h; dy++ {
			edgeRow := dy <= 0 || dy+oh >= ea.h
			for dx := -ow; dx <= ea.w; dx++ {
				if !edgeRow && dx > 0 && dx+ow < ea.w {
					dx = ea.w - ow - 1
					continue
				}
				off := image.Pt(dx, dy)
				area := unionArea(ea.w, ea.h, off, ow, oh)
				if area > best.area {
					continue
				}
				shared, ok := fits(pts, ea, off, true)
				if !ok {
					continue
				}
				if area < best.area || shared > best.shared {
					best = placement{o, off, area, shared}
				}
			}
		}
	}

	ow, oh := best.o.Size(eb.w, eb.h)
	u := image.Rect(0, 0, ea.w, ea.h).Union(image.Rect(best.off.X, best.off.Y, best.off.X+ow, best.off.Y+oh))
	w := u.Dx()
	grid := make([]uint32, w*u.Dy())
	for _, px := range ea.pix {
		q := px.p.Sub(u.Min)
		grid[q.Y*w+q.X] = px.c
	}
	for _, px := range eb.oriented(best.o) {
		q := px.p.Add(best.off).Sub(u.Min)
		grid[q.Y*w+q.X] = px.c
	}
	id := m.push(newEntry(w, u.Dy(), grid))

	// push may have moved the arena
	m.get(a).release(id, u.Min.Mul(-1), 0)
	m.get(b).release(id, best.off.Sub(u.Min), best.o)
	return id, true
}

// UV returns the texture coordinates of id in its root texture. Corners
// are pulled toward the centroid by Nudge pixels relative to the shortest
// edge, at most half way. The result is cached until the root changes.
func (m *Manager) UV(id ID) [3]vmath.Vec2 {
	e := m.get(id)
	root := m.Root(id)
	if e.validated == root {
		return e.final
	}

	var pts [3]vmath.Vec2
	for i, uv := range e.uv {
		pts[i] = vmath.Vec2{X: uv.X * float64(e.w), Y: uv.Y * float64(e.h)}
	}
	for cur := id; cur != root; {
		c := m.get(cur)
		for i := range pts {
			pts[i] = c.orient.Point(pts[i], c.w, c.h).Add(vmath.Vec2{X: float64(c.offset.X), Y: float64(c.offset.Y)})
		}
		cur = c.parent
	}

	r := m.get(root)
	if m.Nudge > 0 {
		shortest := math.Inf(1)
		for i := range pts {
			shortest = math.Min(shortest, pts[i].Distance(pts[(i+1)%3]))
		}
		if shortest > 0 {
			t := math.Min(0.5, m.Nudge/shortest)
			c := vmath.Centroid(pts[0], pts[1], pts[2])
			for i := range pts {
				pts[i] = pts[i].Lerp(c, t)
			}
		}
	}
	for i := range pts {
		pts[i] = vmath.Vec2{X: pts[i].X / float64(r.w), Y: pts[i].Y / float64(r.h)}
	}

	e = m.get(id)
	e.final, e.validated = pts, root
	return pts
}

// Combine packs the given top-level textures. Smaller textures are first
// absorbed into larger ones that contain them; the remaining textures are
// then merged pairwise, most similar pair first, until one root is left.
func (m *Manager) Combine(ids []ID) ID {
	var live []ID
	for _, id := range ids {
		if m.topLevel(id) {
			live = append(live, id)
		}
	}
	if len(live) == 0 {
		return None
	}

	sort.SliceStable(live, func(i, j int) bool {
		pi, pj := m.Pixels(live[i]), m.Pixels(live[j])
		if pi != pj {
			return pi < pj
		}
		return live[i] < live[j]
	})
	for i, c := range live {
		for j := len(live) - 1; j > i; j-- {
			if m.MakeChild(live[j], c) {
				break
			}
		}
		m.report("contain", i+1, len(live))
	}

	roots := live[:0]
	for _, id := range live {
		if m.topLevel(id) {
			roots = append(roots, id)
		}
	}
	return m.mergeAll(roots)
}

type partner struct {
	id  ID
	sim float64
}

var nobody = partner{None, -1}

// offer returns the better of p and (id, sim). Ties keep p.
func (p partner) offer(id ID, sim float64) partner {
	if sim > p.sim {
		return partner{id, sim}
	}
	return p
}

// mergeAll merges the most similar pair of roots until one is left. Every
// root tracks its most similar partner, so a step compares the new parent
// with the others and rescans only roots whose partner was merged away.
func (m *Manager) mergeAll(roots []ID) ID {
	keys := make(map[ID][]uint64, len(roots))
	best := make(map[ID]partner, len(roots))
	for _, id := range roots {
		keys[id] = m.pixelKeys(id)
		best[id] = nobody
	}
	for i, a := range roots {
		for _, b := range roots[i+1:] {
			s := jaccard(keys[a], keys[b])
			best[a] = best[a].offer(b, s)
			best[b] = best[b].offer(a, s)
		}
	}

	alive := slices.Clone(roots)
	total := len(alive) - 1
	for step := 0; len(alive) > 1; step++ {
		a := alive[0]
		for _, r := range alive[1:] {
			if best[r].sim > best[a].sim {
				a = r
			}
		}
		b := best[a].id

		id, ok := m.Merge(a, b)
		if !ok {
			panic(fmt.Sprintf("atlas: cannot merge roots %d and %d", a, b))
		}
		alive = slices.DeleteFunc(alive, func(r ID) bool { return r == a || r == b })
		delete(keys, a)
		delete(keys, b)
		delete(best, a)
		delete(best, b)
		keys[id] = m.pixelKeys(id)

		mine := nobody
		var stale []ID
		for _, r := range alive {
			s := jaccard(keys[r], keys[id])
			mine = mine.offer(r, s)
			switch p := best[r]; {
			case p.id != a && p.id != b:
				best[r] = p.offer(id, s)
			case s >= p.sim:
				// every other partner of r scored at most p.sim
				best[r] = partner{id, s}
			default:
				stale = append(stale, r)
			}
		}
		alive = append(alive, id)
		best[id] = mine
		for _, r := range stale {
			best[r] = closest(r, alive, keys)
		}
		m.report("merge", step+1, total)
	}
	return alive[0]
}

func closest(r ID, alive []ID, keys map[ID][]uint64) partner {
	p := nobody
	for _, o := range alive {
		if o != r {
			p = p.offer(o, jaccard(keys[r], keys[o]))
		}
	}
	return p
}

func (m *Manager) report(stage string, done, total int) {
	if m.Progress == nil || total == 0 {
		return
	}
	m.Progress(stage, done*100/total)
}

// pixelKeys packs position and colour of every pixel of id. pix is
// row-major, so the keys come out sorted.
func (m *Manager) pixelKeys(id ID) []uint64 {
	e := m.get(id)
	keys := make([]uint64, len(e.pix))
	for i, px := range e.pix {
		keys[i] = uint64(uint16(px.p.Y))<<48 | uint64(uint16(px.p.X))<<32 | uint64(px.c)
	}
	return keys
}

// jaccard returns |a ∩ b| / |a ∪ b| of two sorted key sets.
func jaccard(a, b []uint64) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	inter := 0
	for _, k := range a {
		if _, ok := slices.BinarySearch(b, k); ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
