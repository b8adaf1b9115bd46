package image

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
)

// ClosestCanonicalAxes returns, for each world axis (R,A,S), the index
// (0,1,2) and sign of the voxel axis whose direction in ijk2xyz is
// closest to it — the same closest-axis permutation
// original_source/src/image/orientation.cpp derives from qform/sform to
// classify an image's orientation. No other package in this module
// calls it.
func ClosestCanonicalAxes(ijk2xyz lin.M4) (axis [3]int, sign [3]float64) {
	cols := [3]lin.V3{
		{X: ijk2xyz.Xx, Y: ijk2xyz.Xy, Z: ijk2xyz.Xz},
		{X: ijk2xyz.Yx, Y: ijk2xyz.Yy, Z: ijk2xyz.Yz},
		{X: ijk2xyz.Zx, Y: ijk2xyz.Zy, Z: ijk2xyz.Zz},
	}
	used := [3]bool{}
	for worldAxis := 0; worldAxis < 3; worldAxis++ {
		best, bestAxis, bestSign := -1.0, -1, 1.0
		for voxAxis := 0; voxAxis < 3; voxAxis++ {
			if used[voxAxis] {
				continue
			}
			v := component(cols[voxAxis], worldAxis)
			if math.Abs(v) > best {
				best = math.Abs(v)
				bestAxis = voxAxis
				if v < 0 {
					bestSign = -1
				} else {
					bestSign = 1
				}
			}
		}
		axis[worldAxis] = bestAxis
		sign[worldAxis] = bestSign
		used[bestAxis] = true
	}
	return axis, sign
}

func component(v lin.V3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
