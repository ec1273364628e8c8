// Package imageio writes atlas images in the format named by a file
// extension.
package imageio

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file format.
type Format int

const (
	PNG Format = iota
	WebP
	TGA
	BMP
	TIFF
)

var ErrUnknownFormat = errors.New("unknown image format")

var names = map[Format]string{
	PNG:  "png",
	WebP: "webp",
	TGA:  "tga",
	BMP:  "bmp",
	TIFF: "tiff",
}

func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + f.String() }

// ParseFormat accepts a format name or extension, with or without the dot.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(s, "."))
	switch s {
	case "tif":
		return TIFF, nil
	case "":
		return PNG, nil
	}
	for f, n := range names {
		if n == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Write encodes img to w. PNG, WebP and TGA are lossless; BMP and TIFF keep
// the alpha channel of non-opaque images.
func Write(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case WebP:
		return nativewebp.Encode(w, img, nil)
	case TGA:
		return tga.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("%w %v", ErrUnknownFormat, f)
}

// Save writes img to path in the format of its extension.
func Save(path string, img image.Image) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	bw := bufio.NewWriter(file)
	if err := Write(bw, img, f); err != nil {
		file.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
