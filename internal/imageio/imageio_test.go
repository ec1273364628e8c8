package imageio

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(40 * x), G: uint8(100 * y), B: 200, A: 255})
		}
	}
	return img
}

func TestWriteAllFormats(t *testing.T) {
	decoders := map[Format]func(io.Reader) (image.Image, error){
		PNG:  png.Decode,
		WebP: webp.Decode,
		TGA:  tga.Decode,
		BMP:  bmp.Decode,
		TIFF: tiff.Decode,
	}
	src := testImage()
	for f, decode := range decoders {
		var buf bytes.Buffer
		if err := Write(&buf, src, f); err != nil {
			t.Errorf("%v: write failed: %v", f, err)
			continue
		}
		got, err := decode(&buf)
		if err != nil {
			t.Errorf("%v: decode failed: %v", f, err)
			continue
		}
		if got.Bounds().Size() != src.Bounds().Size() {
			t.Errorf("%v: expected size %v, got %v", f, src.Bounds().Size(), got.Bounds().Size())
			continue
		}
		for y := range 2 {
			for x := range 3 {
				want := src.NRGBAAt(x, y)
				have := color.NRGBAModel.Convert(got.At(got.Bounds().Min.X+x, got.Bounds().Min.Y+y)).(color.NRGBA)
				if have != want {
					t.Errorf("%v: pixel (%d,%d) expected %v, got %v", f, x, y, want, have)
				}
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{".png", PNG},
		{"WEBP", WebP},
		{"tga", TGA},
		{".tif", TIFF},
		{"bmp", BMP},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %v, got %v (%v)", tt.in, tt.want, got, err)
		}
	}
	if _, err := ParseFormat("jpeg"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.png")
	if err := Save(path, testImage()); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("expected a png file, got %v", err)
	}
	if err := Save(filepath.Join(t.TempDir(), "atlas.xyz"), testImage()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}
