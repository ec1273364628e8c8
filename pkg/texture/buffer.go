// Package texture samples voxel colors under mesh triangles into small
// pixel buffers and shrinks them without losing what the triangle shows.
package texture

import (
	"image"
	"image/color"
)

// Buffer is a block of packed ARGB pixels stored row by row. A zero pixel
// is unset.
type Buffer struct {
	W, H int
	Pix  []uint32
}

// NewBuffer returns an unset w x h buffer.
func NewBuffer(w, h int) *Buffer {
	return &Buffer{W: w, H: h, Pix: make([]uint32, w*h)}
}

// In reports whether (x, y) is inside the buffer.
func (b *Buffer) In(x, y int) bool { return x >= 0 && y >= 0 && x < b.W && y < b.H }

// At returns the pixel at (x, y), or 0 outside the buffer.
func (b *Buffer) At(x, y int) uint32 {
	if !b.In(x, y) {
		return 0
	}
	return b.Pix[y*b.W+x]
}

// Set writes the pixel at (x, y).
func (b *Buffer) Set(x, y int, c uint32) { b.Pix[y*b.W+x] = c }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{W: b.W, H: b.H, Pix: append([]uint32(nil), b.Pix...)}
}

// Count returns the number of set pixels.
func (b *Buffer) Count() int {
	n := 0
	for _, p := range b.Pix {
		if p != 0 {
			n++
		}
	}
	return n
}

func (b *Buffer) transpose() *Buffer {
	t := NewBuffer(b.H, b.W)
	for y := range b.H {
		for x := range b.W {
			t.Set(y, x, b.At(x, y))
		}
	}
	return t
}

// Image converts the buffer to an image. Buffer row 0 is the bottom row,
// so rows are flipped to make v point up.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.W, b.H))
	for y := range b.H {
		for x := range b.W {
			img.SetNRGBA(x, b.H-1-y, Unpack(b.At(x, y)))
		}
	}
	return img
}

// Pack converts a color to a pixel. Fully transparent colors pack to 0.
func Pack(c color.Color) uint32 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return 0
	}
	return uint32(n.A)<<24 | uint32(n.R)<<16 | uint32(n.G)<<8 | uint32(n.B)
}

// Unpack converts a pixel to a color.
func Unpack(p uint32) color.NRGBA {
	return color.NRGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
}
