package texture

import (
	"image"
	"image/color"
	"testing"

	"github.com/Faultbox/voxmesh/pkg/grid"
	vmath "github.com/Faultbox/voxmesh/pkg/math"
	"github.com/Faultbox/voxmesh/pkg/mesh"
)

var (
	red   = Pack(color.NRGBA{R: 255, A: 255})
	green = Pack(color.NRGBA{G: 255, A: 255})
	blue  = Pack(color.NRGBA{B: 255, A: 255})
)

var plane = grid.Plane{Axis: grid.AxisZ, Positive: true}

// colored returns a lookup for an unbounded plane colored by f(u, v).
func colored(f func(u, v int) uint32) Lookup {
	return func(pos [3]int) (uint32, bool) {
		if pos[2] != 0 {
			return 0, false
		}
		return f(pos[0], pos[1]), true
	}
}

func tri(ax, ay, bx, by, cx, cy int) mesh.Triangle {
	return mesh.Triangle{image.Pt(ax, ay), image.Pt(bx, by), image.Pt(cx, cy)}
}

func TestExtractSinglePixel(t *testing.T) {
	tex := Extract(plane, tri(2, 3, 3, 3, 3, 4), colored(func(u, v int) uint32 { return red }))
	if tex.Buf.W != 1 || tex.Buf.H != 1 {
		t.Fatalf("expected 1x1 buffer, got %dx%d", tex.Buf.W, tex.Buf.H)
	}
	if tex.UV != single {
		t.Errorf("expected fixed single-pixel mapping, got %v", tex.UV)
	}
	if tex.Buf.At(0, 0) != red {
		t.Errorf("expected red pixel, got %08x", tex.Buf.At(0, 0))
	}
}

func TestExtractFootprint(t *testing.T) {
	tex := Extract(plane, tri(0, 0, 3, 0, 0, 3), colored(func(u, v int) uint32 { return green }))
	if tex.Buf.W != 3 || tex.Buf.H != 3 {
		t.Fatalf("expected 3x3 buffer, got %dx%d", tex.Buf.W, tex.Buf.H)
	}
	if n := tex.Buf.Count(); n != 6 {
		t.Errorf("expected 6 covered pixels, got %d", n)
	}
	if tex.Buf.At(2, 1) != 0 {
		t.Error("expected pixel touching only the hypotenuse to stay unset")
	}
	want := [3]vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	if tex.UV != want {
		t.Errorf("expected uv %v, got %v", want, tex.UV)
	}
}

func TestExtractMissingVoxelPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a missing voxel")
		}
	}()
	Extract(plane, tri(0, 0, 2, 0, 2, 2), func(pos [3]int) (uint32, bool) { return 0, false })
}

// samples are barycentric weights of points strictly inside a triangle
var samples = [][3]float64{
	{0.6137, 0.2719, 0.1144},
	{0.1144, 0.6137, 0.2719},
	{0.2719, 0.1144, 0.6137},
	{0.3331, 0.3337, 0.3332},
	{0.8123, 0.0941, 0.0936},
	{0.0917, 0.8149, 0.0934},
	{0.0921, 0.0988, 0.8091},
}

func at(uv [3]vmath.Vec2, w [3]float64) vmath.Vec2 {
	return uv[0].Scale(w[0]).Add(uv[1].Scale(w[1])).Add(uv[2].Scale(w[2]))
}

func checkLossless(t *testing.T, name string, before, after *Texture) {
	t.Helper()
	for _, w := range samples {
		if a, b := before.Sample(at(before.UV, w)), after.Sample(at(after.UV, w)); a != b {
			t.Errorf("%s: sample %v changed from %08x to %08x", name, w, a, b)
		}
	}
	// corners pulled slightly toward the centroid
	c0 := vmath.Centroid(before.UV[0], before.UV[1], before.UV[2])
	c1 := vmath.Centroid(after.UV[0], after.UV[1], after.UV[2])
	for i := range 3 {
		a := before.Sample(before.UV[i].Lerp(c0, 0.05))
		b := after.Sample(after.UV[i].Lerp(c1, 0.05))
		if a != b {
			t.Errorf("%s: corner %d changed from %08x to %08x", name, i, a, b)
		}
	}
}

func TestCompressLossless(t *testing.T) {
	cases := []struct {
		name  string
		tri   mesh.Triangle
		color func(u, v int) uint32
		w, h  int
	}{
		{"uniform", tri(0, 0, 4, 0, 4, 2), func(u, v int) uint32 { return red }, 1, 1},
		{"stripes", tri(0, 0, 4, 0, 4, 4), func(u, v int) uint32 {
			if u/2 == 0 {
				return red
			}
			return blue
		}, 2, 1},
		{"shifted", tri(0, 0, 6, 0, 0, 3), func(u, v int) uint32 {
			if (u+1)/3 == 0 {
				return green
			}
			return red
		}, 2, 1},
		{"checker", tri(0, 0, 3, 0, 3, 3), func(u, v int) uint32 {
			if (u+v)%2 == 0 {
				return red
			}
			return green
		}, 3, 3},
	}
	for _, tc := range cases {
		before := Extract(plane, tc.tri, colored(tc.color))
		after := Extract(plane, tc.tri, colored(tc.color))
		Compress(after)
		if after.Buf.W != tc.w || after.Buf.H != tc.h {
			t.Errorf("%s: expected %dx%d, got %dx%d", tc.name, tc.w, tc.h, after.Buf.W, after.Buf.H)
		}
		checkLossless(t, tc.name, before, after)
	}
}

func TestCompressSinglePixelMapping(t *testing.T) {
	tex := Extract(plane, tri(0, 0, 4, 0, 4, 2), colored(func(u, v int) uint32 { return red }))
	if !Compress(tex) {
		t.Fatal("expected uniform texture to shrink")
	}
	if tex.UV != single {
		t.Errorf("expected fixed single-pixel mapping, got %v", tex.UV)
	}
}

func TestPad(t *testing.T) {
	tex := &Texture{Buf: NewBuffer(2, 1), UV: [3]vmath.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}}
	tex.Buf.Set(0, 0, red)
	tex.Buf.Set(1, 0, blue)
	before := &Texture{Buf: tex.Buf.Clone(), UV: tex.UV}

	Pad(tex)
	if tex.Buf.W != 4 || tex.Buf.H != 3 {
		t.Fatalf("expected 4x3, got %dx%d", tex.Buf.W, tex.Buf.H)
	}
	for y := range 3 {
		row := [4]uint32{tex.Buf.At(0, y), tex.Buf.At(1, y), tex.Buf.At(2, y), tex.Buf.At(3, y)}
		if row != [4]uint32{red, red, blue, blue} {
			t.Errorf("row %d: unexpected pixels %08x", y, row)
		}
	}
	want := vmath.Vec2{X: 0.25, Y: 1.0 / 3}
	if !tex.UV[0].ApproxEqual(want, 1e-12) {
		t.Errorf("expected uv %v, got %v", want, tex.UV[0])
	}
	checkLossless(t, "pad", before, tex)
}

func TestImageFlipsRows(t *testing.T) {
	b := NewBuffer(1, 2)
	b.Set(0, 0, red)
	b.Set(0, 1, blue)
	img := b.Image()
	if got := Pack(img.At(0, 0)); got != blue {
		t.Errorf("expected top row blue, got %08x", got)
	}
	if got := Pack(img.At(0, 1)); got != red {
		t.Errorf("expected bottom row red, got %08x", got)
	}
}

func TestPackTransparentIsUnset(t *testing.T) {
	if Pack(color.NRGBA{R: 10}) != 0 {
		t.Error("expected transparent color to pack to 0")
	}
	if c := Unpack(Pack(color.NRGBA{R: 1, G: 2, B: 3, A: 4})); c != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("unexpected round trip %v", c)
	}
}
