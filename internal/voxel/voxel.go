// Package voxel holds the colored voxels an export reads from.
package voxel

import (
	"fmt"
	"sort"
)

// Voxel is one colored unit cube. Color is packed ARGB.
type Voxel struct {
	Pos   [3]int
	Color uint32
	Layer int
}

// Store enumerates voxels and looks them up by position.
type Store interface {
	Voxels() []Voxel
	VoxelAt(pos [3]int) (Voxel, bool)
}

// MemoryStore keeps voxels in insertion order with a position index.
type MemoryStore struct {
	voxels []Voxel
	index  map[[3]int]int
}

// NewMemoryStore returns a store holding vs.
func NewMemoryStore(vs ...Voxel) *MemoryStore {
	s := &MemoryStore{index: make(map[[3]int]int, len(vs))}
	for _, v := range vs {
		s.Add(v)
	}
	return s
}

// Add stores v, replacing any voxel at the same position.
func (s *MemoryStore) Add(v Voxel) {
	if v.Color == 0 {
		panic(fmt.Sprintf("voxel: voxel at %v has no color", v.Pos))
	}
	if i, ok := s.index[v.Pos]; ok {
		s.voxels[i] = v
		return
	}
	s.index[v.Pos] = len(s.voxels)
	s.voxels = append(s.voxels, v)
}

// Voxels returns all voxels in insertion order.
func (s *MemoryStore) Voxels() []Voxel { return s.voxels }

// VoxelAt returns the voxel at pos.
func (s *MemoryStore) VoxelAt(pos [3]int) (Voxel, bool) {
	i, ok := s.index[pos]
	if !ok {
		return Voxel{}, false
	}
	return s.voxels[i], true
}

// Len returns the number of voxels.
func (s *MemoryStore) Len() int { return len(s.voxels) }

// Layers returns the distinct layers in ascending order.
func (s *MemoryStore) Layers() []int {
	seen := make(map[int]bool)
	var layers []int
	for _, v := range s.voxels {
		if !seen[v.Layer] {
			seen[v.Layer] = true
			layers = append(layers, v.Layer)
		}
	}
	sort.Ints(layers)
	return layers
}

// Bounds returns the smallest and largest coordinate on each axis. An
// empty store returns zero bounds.
func (s *MemoryStore) Bounds() (lo, hi [3]int) {
	if len(s.voxels) == 0 {
		return lo, hi
	}
	lo, hi = s.voxels[0].Pos, s.voxels[0].Pos
	for _, v := range s.voxels[1:] {
		for a := range 3 {
			lo[a] = min(lo[a], v.Pos[a])
			hi[a] = max(hi[a], v.Pos[a])
		}
	}
	return lo, hi
}
