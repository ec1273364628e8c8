package export

import (
	"image"
	"sort"

	"github.com/Faultbox/voxmesh/internal/voxel"
	"github.com/Faultbox/voxmesh/pkg/grid"
)

// job is one unit of meshing work: the visible faces of a plane, or of one
// color on that plane when meshing flat.
type job struct {
	plane grid.Plane
	color uint32
	cells []image.Point
}

// visibleFaces returns the jobs for the voxels of one group, ordered by
// plane then color. A face is visible when no voxel of the same group sits
// next to it; members reports group membership.
func visibleFaces(vs []voxel.Voxel, store voxel.Store, members func(voxel.Voxel) bool, flat bool) []job {
	type key struct {
		plane grid.Plane
		color uint32
	}
	byKey := make(map[key][]image.Point)

	for _, v := range vs {
		for a := grid.AxisX; a <= grid.AxisZ; a++ {
			for _, positive := range []bool{false, true} {
				n := v.Pos
				if positive {
					n[a]++
				} else {
					n[a]--
				}
				if nv, ok := store.VoxelAt(n); ok && members(nv) {
					continue
				}
				k := key{plane: grid.Plane{Axis: a, Positive: positive, Depth: v.Pos[a]}}
				if flat {
					k.color = v.Color
				}
				byKey[k] = append(byKey[k], k.plane.Project(v.Pos))
			}
		}
	}

	jobs := make([]job, 0, len(byKey))
	for k, cells := range byKey {
		jobs = append(jobs, job{plane: k.plane, color: k.color, cells: cells})
	}
	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].plane != jobs[j].plane {
			return jobs[i].plane.Less(jobs[j].plane)
		}
		return jobs[i].color < jobs[j].color
	})
	return jobs
}
