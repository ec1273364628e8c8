package atlas

import (
	"image"
	"math/rand"
	"testing"
	"time"

	vmath "github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/texture"
)

const (
	cA uint32 = 0xff000001 + iota
	cB
	cC
	cD
)

var leafUV = [3]vmath.Vec2{{X: 0.1, Y: 0.2}, {X: 0.9, Y: 0.3}, {X: 0.4, Y: 0.8}}

// tex builds a texture from rows given bottom row first.
func tex(rows ...[]uint32) *texture.Texture {
	b := texture.NewBuffer(len(rows[0]), len(rows))
	for y, r := range rows {
		for x, c := range r {
			b.Set(x, y, c)
		}
	}
	return &texture.Texture{Buf: b, UV: leafUV}
}

func TestUVIdentityWithoutParents(t *testing.T) {
	m := NewManager()
	m.Nudge = 0
	id := m.Add(tex([]uint32{cA, cB}, []uint32{cC, cD}))
	got := m.UV(id)
	for i := range got {
		if !got[i].ApproxEqual(leafUV[i], 1e-12) {
			t.Errorf("corner %d: expected %v, got %v", i, leafUV[i], got[i])
		}
	}
}

func TestUVThroughHalfTurn(t *testing.T) {
	m := NewManager()
	m.Nudge = 0
	parent := m.Add(tex([]uint32{cA, cB}, []uint32{cC, cD}))
	child := m.Add(tex([]uint32{cD, cC}, []uint32{cB, cA}))

	if !m.MakeChild(parent, child) {
		t.Fatal("expected rotated texture to be contained")
	}
	if off, o := m.Placement(child); off != (image.Point{}) || o != 2 {
		t.Errorf("expected half turn at origin, got %v %d", off, o)
	}
	got := m.UV(child)
	for i, uv := range leafUV {
		want := vmath.Vec2{X: 1 - uv.X, Y: 1 - uv.Y}
		if !got[i].ApproxEqual(want, 1e-12) {
			t.Errorf("corner %d: expected %v, got %v", i, want, got[i])
		}
	}
	if m.Pixels(child) != 0 {
		t.Error("expected child pixels to be released")
	}
}

func TestUVNudgeTowardCentroid(t *testing.T) {
	m := NewManager()
	m.Nudge = 0.5
	id := m.Add(tex([]uint32{cA, cB}, []uint32{cC, cD}))
	got := m.UV(id)
	c := vmath.Centroid(leafUV[0], leafUV[1], leafUV[2])
	for i := range got {
		if got[i].Distance(c) >= leafUV[i].Distance(c) {
			t.Errorf("corner %d not pulled toward centroid: %v", i, got[i])
		}
	}
}

func TestDisjointSinglePixels(t *testing.T) {
	m := NewManager()
	a := m.Add(tex([]uint32{cA}))
	b := m.Add(tex([]uint32{cB}))

	if m.MakeChild(a, b) || m.MakeChild(b, a) {
		t.Fatal("expected containment to fail both ways")
	}
	p, ok := m.Merge(a, b)
	if !ok {
		t.Fatal("expected merge to succeed")
	}
	w, h := m.Size(p)
	if w*h < 2 {
		t.Errorf("expected parent of at least 2 pixels, got %dx%d", w, h)
	}
	if m.Root(a) != p || m.Root(b) != p {
		t.Errorf("expected both roots to be %d, got %d and %d", p, m.Root(a), m.Root(b))
	}
	if m.Pixels(p) != 2 {
		t.Errorf("expected 2 pixels in parent, got %d", m.Pixels(p))
	}
}

func TestMergeOverlapsAgreeingPixels(t *testing.T) {
	m := NewManager()
	a := m.Add(tex([]uint32{cA, cB}))
	b := m.Add(tex([]uint32{cB, cC}))
	p, _ := m.Merge(a, b)
	if w, h := m.Size(p); w != 3 || h != 1 {
		t.Errorf("expected 3x1 parent, got %dx%d", w, h)
	}
}

func TestUVCacheFollowsRoot(t *testing.T) {
	m := NewManager()
	m.Nudge = 0
	a := m.Add(tex([]uint32{cA}))
	b := m.Add(tex([]uint32{cB}))
	before := m.UV(a)
	p, _ := m.Merge(a, b)
	after := m.UV(a)
	if before == after {
		t.Error("expected mapping to change once the root changed")
	}
	w, h := m.Size(p)
	// a's pixel keeps its colour through the chain
	img := m.Buffer(a)
	x := int(after[0].X * float64(w))
	y := int(after[0].Y * float64(h))
	if img.At(x, y) != cA {
		t.Errorf("expected corner to sample %08x, got %08x", cA, img.At(x, y))
	}
}

func TestCombineLeavesOneRoot(t *testing.T) {
	m := NewManager()
	var ids []ID
	ids = append(ids, m.Add(tex([]uint32{cA, cB, cC}, []uint32{cD, cA, cB})))
	ids = append(ids, m.Add(tex([]uint32{cB, cC})))
	ids = append(ids, m.Add(tex([]uint32{cD})))
	ids = append(ids, m.Add(tex([]uint32{cC, cC}, []uint32{cC, cC})))
	ids = append(ids, m.Add(tex([]uint32{cD, cD})))

	var stages []string
	m.Progress = func(stage string, percent int) {
		if percent < 0 || percent > 100 {
			t.Errorf("percent out of range: %d", percent)
		}
		stages = append(stages, stage)
	}
	root := m.Combine(ids)
	if len(m.Roots()) != 1 || m.Roots()[0] != root {
		t.Fatalf("expected single root %d, got %v", root, m.Roots())
	}
	for _, id := range ids {
		if m.Root(id) != root {
			t.Errorf("texture %d not under root", id)
		}
	}
	if p, ok := m.Parent(ids[1]); !ok || p != ids[0] {
		t.Errorf("expected texture 1 inside texture 0, got %d", p)
	}
	if len(stages) == 0 {
		t.Error("expected progress reports")
	}
}

func TestOrientationPixelMatchesPoint(t *testing.T) {
	w, h := 3, 2
	for _, o := range Orientations {
		for y := range h {
			for x := range w {
				p := o.Pixel(image.Pt(x, y), w, h)
				c := o.Point(vmath.Vec2{X: float64(x) + 0.5, Y: float64(y) + 0.5}, w, h)
				if int(c.X) != p.X || int(c.Y) != p.Y {
					t.Errorf("orientation %d: pixel (%d,%d) maps to %v, centre to %v", o, x, y, p, c)
				}
			}
		}
	}
}

func TestMergeFillsHoleOnBorder(t *testing.T) {
	m := NewManager()
	a := m.Add(tex([]uint32{cA, cB}, []uint32{cC, 0}))
	b := m.Add(tex([]uint32{cD}))
	p, ok := m.Merge(a, b)
	if !ok {
		t.Fatal("expected merge to succeed")
	}
	if w, h := m.Size(p); w != 2 || h != 2 {
		t.Errorf("expected 2x2 parent, got %dx%d", w, h)
	}
	if off, _ := m.Placement(b); off != image.Pt(1, 1) {
		t.Errorf("expected b in the empty corner, got %v", off)
	}
}

func TestCombineMergesMostSimilarFirst(t *testing.T) {
	m := NewManager()
	a := m.Add(tex([]uint32{cA, cB}))
	b := m.Add(tex([]uint32{cA, cC}))
	c := m.Add(tex([]uint32{cD}))
	m.Combine([]ID{a, b, c})

	pa, _ := m.Parent(a)
	pb, _ := m.Parent(b)
	pc, _ := m.Parent(c)
	if pa != pb {
		t.Errorf("expected a and b to share a parent, got %d and %d", pa, pb)
	}
	if pc == pa {
		t.Errorf("expected c to join after a and b were merged")
	}
}

// locate maps pixel p of id to its root.
func locate(m *Manager, id ID, p image.Point) image.Point {
	for {
		parent, ok := m.Parent(id)
		if !ok {
			return p
		}
		w, h := m.Size(id)
		off, o := m.Placement(id)
		p = o.Pixel(p, w, h).Add(off)
		id = parent
	}
}

func TestCombineManyTextures(t *testing.T) {
	if testing.Short() {
		t.Skip("packs thousands of textures")
	}
	rng := rand.New(rand.NewSource(3))
	palette := make([]uint32, 64)
	for i := range palette {
		palette[i] = 0xff000000 | rng.Uint32()
	}

	m := NewManager()
	var ids []ID
	var texs []*texture.Texture
	for range 4000 {
		w, h := 1+rng.Intn(4), 1+rng.Intn(4)
		b := texture.NewBuffer(w, h)
		for y := range h {
			for x := range w {
				if x+y < max(w, h) {
					b.Set(x, y, palette[rng.Intn(len(palette))])
				}
			}
		}
		tx := &texture.Texture{Buf: b, UV: leafUV}
		texs = append(texs, tx)
		ids = append(ids, m.Add(tx))
	}

	start := time.Now()
	root := m.Combine(ids)
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("expected packing within 10s, took %v", elapsed)
	}
	if roots := m.Roots(); len(roots) != 1 || roots[0] != root {
		t.Fatalf("expected single root %d, got %d roots", root, len(roots))
	}

	img := m.Buffer(root)
	for i, id := range ids {
		b := texs[i].Buf
		for y := range b.H {
			for x := range b.W {
				c := b.At(x, y)
				if c == 0 {
					continue
				}
				q := locate(m, id, image.Pt(x, y))
				if got := img.At(q.X, q.Y); got != c {
					t.Fatalf("texture %d pixel (%d,%d): expected %08x, got %08x", i, x, y, c, got)
				}
			}
		}
	}
}
