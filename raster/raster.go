// Package raster classifies an image grid against a surface: every
// voxel becomes INSIDE, OUTSIDE or BOUNDARY, and boundary voxels keep
// the list of faces that touch them (spec.md §4.5, §4.6).
//
// Grounded on the voxel-walking approach described in spec.md and the
// Akenine-Möller box-triangle test in geom.TriangleBoxOverlap
// (original_source/external/triangleVoxelIntersection); the interior
// fill is a parity ray-cast along the x axis per (y,z) column, the
// textbook dual of the boundary pass.
package raster

import (
	"github.com/nibrary/nibrary/geom"
	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
)

// Class is a voxel's classification relative to a surface.
type Class uint8

const (
	Outside Class = iota
	Inside
	Boundary
)

// Mode selects which classes Rasterize actually computes; ONLY_BOUNDARY
// skips the interior parity pass entirely.
type Mode int

const (
	Mask Mode = iota
	MaskWithBoundary
	OnlyBoundary
)

// FaceSet lists surface face indices touching the voxel; kept small
// and sorted for cheap membership tests.
type FaceSet []int

// Surface is the minimal geometry raster needs, satisfied by
// *surface.Surface without importing that package (which itself may
// depend on raster for point-in-mesh via enablePointCheck).
type Surface interface {
	NF() int
	FaceVerts(f int) (a, b, c lin.V3)
}

// Classification is the rasterizer's output: a per-voxel Class image
// plus, for BOUNDARY voxels, the touching face list.
type Classification struct {
	Img   *image.Image[uint8] // Class values, one per voxel
	Faces []FaceSet           // parallel to Img.Data, nil where not BOUNDARY
}

// FaceGrid exposes just the per-voxel face lists, e.g. for segment
// walking that doesn't need the full classification image.
type FaceGrid struct {
	ImgDims [3]int64
	Ijk2xyz lin.M4
	Xyz2ijk lin.M4
	Faces   []FaceSet
}

// Grid extracts just the per-voxel face lists, e.g. for segment
// walking that doesn't need the INSIDE/OUTSIDE classification.
func (c *Classification) Grid() *FaceGrid {
	return &FaceGrid{
		ImgDims: [3]int64{c.Img.ImgDims[0], c.Img.ImgDims[1], c.Img.ImgDims[2]},
		Ijk2xyz: c.Img.Ijk2xyz,
		Xyz2ijk: c.Img.Xyz2ijk,
		Faces:   c.Faces,
	}
}

// Rasterize classifies every voxel of an image with geometry
// (ImgDims/PixDims/Ijk2xyz) equal to ref against surf, in the
// requested mode.
func Rasterize(surf Surface, ref *image.Image[uint8], mode Mode) *Classification {
	n := ref.NumEl()
	out := image.CreateFromTemplate[uint8](ref, false)
	c := &Classification{Img: out, Faces: make([]FaceSet, n)}

	halfSize := lin.V3{X: 0.5, Y: 0.5, Z: 0.5}

	nx, ny, nz := ref.ImgDims[0], ref.ImgDims[1], ref.ImgDims[2]

	mt.Run(surf.NF(), func(task mt.Task, _ *mt.Barrier) {
		a, b, c0 := surf.FaceVerts(task.No)
		ia := ref.World2Vox(a)
		ib := ref.World2Vox(b)
		ic := ref.World2Vox(c0)

		minI := int64(floor(min3(ia.X, ib.X, ic.X)))
		maxI := int64(ceil(max3(ia.X, ib.X, ic.X)))
		minJ := int64(floor(min3(ia.Y, ib.Y, ic.Y)))
		maxJ := int64(ceil(max3(ia.Y, ib.Y, ic.Y)))
		minK := int64(floor(min3(ia.Z, ib.Z, ic.Z)))
		maxK := int64(ceil(max3(ia.Z, ib.Z, ic.Z)))

		for i := clamp(minI-1, 0, nx-1); i <= clamp(maxI+1, 0, nx-1); i++ {
			for j := clamp(minJ-1, 0, ny-1); j <= clamp(maxJ+1, 0, ny-1); j++ {
				for k := clamp(minK-1, 0, nz-1); k <= clamp(maxK+1, 0, nz-1); k++ {
					centre := lin.V3{X: float64(i), Y: float64(j), Z: float64(k)}
					if !geom.TriangleBoxOverlap(centre, halfSize, ia, ib, ic) {
						continue
					}
					idx := out.Sub2ind([image.NDIMS]int64{i, j, k, 0, 0, 0, 0})
					mt.PROC_MX.Lock()
					out.Data[idx] = uint8(Boundary)
					c.Faces[idx] = append(c.Faces[idx], task.No)
					mt.PROC_MX.Unlock()
				}
			}
		}
	})

	if mode == OnlyBoundary {
		return c
	}

	// interior parity fill: cast a ray along +x for each (j,k) column,
	// toggling inside/outside each time a BOUNDARY run is entered from
	// OUTSIDE, using the run's own membership as one crossing.
	mt.Run(int(ny*nz), func(task mt.Task, _ *mt.Barrier) {
		j := int64(task.No) % ny
		k := int64(task.No) / ny
		inside := false
		prevBoundary := false
		for i := int64(0); i < nx; i++ {
			idx := out.Sub2ind([image.NDIMS]int64{i, j, k, 0, 0, 0, 0})
			if Class(out.Data[idx]) == Boundary {
				if !prevBoundary {
					inside = !inside
				}
				prevBoundary = true
				continue
			}
			prevBoundary = false
			if inside {
				out.Data[idx] = uint8(Inside)
			}
		}
	})

	if mode == Mask {
		// fold BOUNDARY into INSIDE, losing the boundary distinction
		// but keeping the interior set identical to
		// MASK_WITH_BOUNDARY's (spec.md §8.4's rasterizer
		// self-consistency invariant).
		for i := range out.Data {
			if Class(out.Data[i]) == Boundary {
				out.Data[i] = uint8(Inside)
			}
		}
	}

	return c
}

func floor(f float64) float64 {
	i := int64(f)
	if f < 0 && float64(i) != f {
		i--
	}
	return float64(i)
}
func ceil(f float64) float64 {
	i := int64(f)
	if f > 0 && float64(i) != f {
		i++
	}
	return float64(i)
}
func min3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
