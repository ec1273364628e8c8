package voxel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

var (
	ErrMalformedLine = errors.New("malformed voxel line")
	ErrBadColor      = errors.New("bad voxel color")
)

// Load reads a voxel list file. Files ending in .zst are zstd compressed,
// files ending in .sz use the snappy framing format.
func Load(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open voxels: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	case strings.HasSuffix(path, ".sz"):
		r = snappy.NewReader(f)
	}

	s, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Read parses voxel lines of the form "x y z color [layer]". Blank lines
// and lines starting with # are skipped. Colors are hex rrggbb or
// aarrggbb with an optional leading #.
func Read(r io.Reader) (*MemoryStore, error) {
	s := NewMemoryStore()
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		v, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		s.Add(v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read voxels: %w", err)
	}
	return s, nil
}

func parseLine(text string) (Voxel, error) {
	fields := strings.Fields(text)
	if len(fields) != 4 && len(fields) != 5 {
		return Voxel{}, fmt.Errorf("%w: want 4 or 5 fields, got %d", ErrMalformedLine, len(fields))
	}
	var v Voxel
	for a := range 3 {
		n, err := strconv.Atoi(fields[a])
		if err != nil {
			return Voxel{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		v.Pos[a] = n
	}
	c, err := ParseColor(fields[3])
	if err != nil {
		return Voxel{}, err
	}
	v.Color = c
	if len(fields) == 5 {
		if v.Layer, err = strconv.Atoi(fields[4]); err != nil {
			return Voxel{}, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
	}
	return v, nil
}

// ParseColor parses rrggbb (opaque) or aarrggbb hex.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return 0, fmt.Errorf("%w %q", ErrBadColor, s)
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrBadColor, s)
	}
	c := uint32(n)
	if len(s) == 6 {
		c |= 0xff000000
	}
	if c>>24 == 0 {
		return 0, fmt.Errorf("%w %q: fully transparent", ErrBadColor, s)
	}
	return c, nil
}

// Write stores voxels in the format Read accepts.
func Write(w io.Writer, s Store) error {
	bw := bufio.NewWriter(w)
	for _, v := range s.Voxels() {
		if _, err := fmt.Fprintf(bw, "%d %d %d %08x %d\n", v.Pos[0], v.Pos[1], v.Pos[2], v.Color, v.Layer); err != nil {
			return err
		}
	}
	return bw.Flush()
}
