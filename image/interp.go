package image

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
)

// Sample interpolates a world-space query at point xyz along trailing
// channel v, using the image's configured InterpMethod. Returns
// OutsideVal when the query falls outside the sampling support — this is
// a deliberate silent fallback, documented at query time (spec.md §7).
func (img *Image[T]) Sample(xyz lin.V3, v int64) T {
	ijk := img.World2Vox(xyz)
	switch img.InterpMethod {
	case NEAREST:
		return img.sampleNearest(ijk, v)
	case CUBIC:
		return img.sampleCubic(ijk, v)
	default:
		return img.sampleLinear(ijk, v)
	}
}

func (img *Image[T]) sampleNearest(ijk lin.V3, v int64) T {
	i := int64(math.Round(ijk.X))
	j := int64(math.Round(ijk.Y))
	k := int64(math.Round(ijk.Z))
	if !img.InBounds3(i, j, k) {
		return img.OutsideVal
	}
	return *img.At(i, j, k, v)
}

func (img *Image[T]) voxelAt(i, j, k, v int64) (float64, bool) {
	if !img.InBounds3(i, j, k) {
		return 0, false
	}
	return float64(*img.At(i, j, k, v)), true
}

func (img *Image[T]) sampleLinear(ijk lin.V3, v int64) T {
	i0 := math.Floor(ijk.X)
	j0 := math.Floor(ijk.Y)
	k0 := math.Floor(ijk.Z)
	fx, fy, fz := ijk.X-i0, ijk.Y-j0, ijk.Z-k0

	ii, jj, kk := int64(i0), int64(j0), int64(k0)

	// if every one of the eight enclosing centres is out of bounds the
	// query is entirely outside the sampling support.
	var acc, wsum float64
	any := false
	for dx := int64(0); dx <= 1; dx++ {
		for dy := int64(0); dy <= 1; dy++ {
			for dz := int64(0); dz <= 1; dz++ {
				val, ok := img.voxelAt(ii+dx, jj+dy, kk+dz, v)
				if !ok {
					continue
				}
				wx := fx
				if dx == 0 {
					wx = 1 - fx
				}
				wy := fy
				if dy == 0 {
					wy = 1 - fy
				}
				wz := fz
				if dz == 0 {
					wz = 1 - fz
				}
				w := wx * wy * wz
				acc += w * val
				wsum += w
				any = true
			}
		}
	}
	if !any || wsum == 0 {
		return img.OutsideVal
	}
	return T(acc / wsum)
}

// sampleCubic performs separable uniform-B-spline interpolation on the
// 4x4x4 neighbourhood of ijk (spec.md §4.2). Samples outside the image
// contribute OutsideVal, matching the documented border policy.
func (img *Image[T]) sampleCubic(ijk lin.V3, v int64) T {
	i0 := math.Floor(ijk.X)
	j0 := math.Floor(ijk.Y)
	k0 := math.Floor(ijk.Z)
	tx, ty, tz := ijk.X-i0, ijk.Y-j0, ijk.Z-k0
	ii, jj, kk := int64(i0), int64(j0), int64(k0)

	wx := lin.CubicBSpline(tx)
	wy := lin.CubicBSpline(ty)
	wz := lin.CubicBSpline(tz)

	var acc float64
	any := false
	for dx := int64(-1); dx <= 2; dx++ {
		for dy := int64(-1); dy <= 2; dy++ {
			for dz := int64(-1); dz <= 2; dz++ {
				val := float64(img.OutsideVal)
				if img.InBounds3(ii+dx, jj+dy, kk+dz) {
					val = float64(*img.At(ii+dx, jj+dy, kk+dz, v))
					any = true
				}
				w := wx[dx+1] * wy[dy+1] * wz[dz+1]
				acc += w * val
			}
		}
	}
	if !any {
		return img.OutsideVal
	}
	return T(acc)
}
