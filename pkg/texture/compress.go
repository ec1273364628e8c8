package texture

import vmath "github.com/Faultbox/voxmesh/pkg/math"

// Compress shrinks t in place where neighbouring rows or columns repeat,
// then repairs the pixels the rescaled triangle now covers. Sampling any
// point of the triangle returns the same color before and after. It
// reports whether the buffer shrank.
func Compress(t *Texture) bool {
	shrunk := false
	for {
		rows := t.compressRows()
		cols := t.compressColumns()
		if !rows && !cols {
			break
		}
		shrunk = true
	}
	if shrunk {
		t.repair()
		if t.Buf.W*t.Buf.H == 1 {
			t.UV = single
		}
	}
	return shrunk
}

func (t *Texture) compressRows() bool {
	t.swapAxes()
	ok := t.compressColumns()
	t.swapAxes()
	return ok
}

func (t *Texture) swapAxes() {
	t.Buf = t.Buf.transpose()
	for i, uv := range t.UV {
		t.UV[i] = vmath.Vec2{X: uv.Y, Y: uv.X}
	}
}

// compressColumns merges every k columns into one, starting the first
// block s columns before the buffer, for the (k, s) giving the narrowest
// buffer. Within a block and row all set pixels must agree; unset pixels
// match anything.
func (t *Texture) compressColumns() bool {
	w := t.Buf.W
	bestW, bestK, bestS := w, 0, 0
	for k := w; k >= 2; k-- {
		for s := range k {
			nw := (w + s + k - 1) / k
			if nw >= bestW || !uniformBlocks(t.Buf, k, s) {
				continue
			}
			bestW, bestK, bestS = nw, k, s
		}
	}
	if bestK == 0 {
		return false
	}

	k, s := bestK, bestS
	out := NewBuffer(bestW, t.Buf.H)
	for y := range t.Buf.H {
		for x := range w {
			if c := t.Buf.At(x, y); c != 0 {
				out.Set((x+s)/k, y, c)
			}
		}
	}
	for i, uv := range t.UV {
		px := uv.X*float64(w) + float64(s)
		t.UV[i].X = px / float64(k) / float64(bestW)
	}
	t.Buf = out
	return true
}

func uniformBlocks(b *Buffer, k, s int) bool {
	for y := range b.H {
		var block uint32
		for x := range b.W {
			if x == 0 || (x+s)%k == 0 {
				block = 0
			}
			c := b.At(x, y)
			if c == 0 {
				continue
			}
			if block != 0 && block != c {
				return false
			}
			block = c
		}
	}
	return true
}

// repair clears pixels the triangle no longer touches and fills touched
// pixels that are unset from the nearest set pixel found by walking left,
// right, down or up.
func (t *Texture) repair() {
	in := t.Footprint()
	src := t.Buf.Clone()
	for y := range t.Buf.H {
		for x := range t.Buf.W {
			i := y*t.Buf.W + x
			switch {
			case !in[i]:
				t.Buf.Pix[i] = 0
			case src.Pix[i] == 0:
				t.Buf.Pix[i] = donor(src, x, y)
			}
		}
	}
}

func donor(b *Buffer, x, y int) uint32 {
	for d := 1; d < max(b.W, b.H); d++ {
		for _, c := range [4]uint32{b.At(x-d, y), b.At(x+d, y), b.At(x, y-d), b.At(x, y+d)} {
			if c != 0 {
				return c
			}
		}
	}
	return 0
}

// Pad grows t by one pixel on every side, copying each edge pixel into the
// border next to it, and rescales the texture coordinates so the content
// keeps its place. Filtering at the triangle edge then reads the same
// colors as inside.
func Pad(t *Texture) {
	b := t.Buf
	out := NewBuffer(b.W+2, b.H+2)
	for y := range out.H {
		for x := range out.W {
			sx := min(max(x-1, 0), b.W-1)
			sy := min(max(y-1, 0), b.H-1)
			out.Set(x, y, b.At(sx, sy))
		}
	}
	for i, uv := range t.UV {
		t.UV[i] = vmath.Vec2{
			X: (uv.X*float64(b.W) + 1) / float64(out.W),
			Y: (uv.Y*float64(b.H) + 1) / float64(out.H),
		}
	}
	t.Buf = out
}
