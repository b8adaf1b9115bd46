package edt

import (
	"math"
	"testing"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
)

func identityMask(t *testing.T, n int64, inside func(i, j, k int64) bool) *image.Image[uint8] {
	t.Helper()
	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = 1, 1, 1, 1
	var order [image.NDIMS]int
	for i := range order {
		order[i] = i
	}
	img, err := image.Create[uint8](3, [image.NDIMS]int64{n, n, n, 1, 1, 1, 1}, [image.NDIMS]float64{1, 1, 1, 1, 1, 1, 1}, ijk2xyz, order, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for k := int64(0); k < n; k++ {
		for j := int64(0); j < n; j++ {
			for i := int64(0); i < n; i++ {
				if inside(i, j, k) {
					*img.At(i, j, k) = 1
				}
			}
		}
	}
	return img
}

func TestSignedDistanceSign(t *testing.T) {
	mid := int64(4)
	// a solid 5x5x5 block centred in a 9x9x9 grid, so the centre voxel
	// is strictly interior (no boundary neighbours).
	mask := identityMask(t, 9, func(i, j, k int64) bool {
		return i >= 2 && i <= 6 && j >= 2 && j <= 6 && k >= 2 && k <= 6
	})

	// Conn26 lets the fast march take diagonal steps, so the geodesic
	// distance from (0,0,0) to the block corner at (2,2,2) matches the
	// true Euclidean distance exactly (two (1,1,1) diagonal steps).
	d := SignedDistance(mask, image.Conn26)

	center := *d.At(mid, mid, mid)
	if center >= 0 {
		t.Errorf("centre voxel: want negative distance, got %v", center)
	}

	outside := *d.At(0, 0, 0)
	if outside <= 0 {
		t.Errorf("far outside voxel: want positive distance, got %v", outside)
	}
	wantFar := math.Sqrt(12)
	if math.Abs(float64(outside)-wantFar) > 1e-4 {
		t.Errorf("corner distance: got %v want ~%v", outside, wantFar)
	}
}

func TestSignedDistanceMonotoneAwayFromBoundary(t *testing.T) {
	mid := int64(4)
	mask := identityMask(t, 9, func(i, j, k int64) bool {
		return (i-mid)*(i-mid)+(j-mid)*(j-mid)+(k-mid)*(k-mid) <= 4
	})
	d := SignedDistance(mask, image.Conn26)

	center := *d.At(mid, mid, mid)
	near := *d.At(mid+1, mid, mid)
	if center > near {
		t.Errorf("distance should grow from centre outward: centre=%v near=%v", center, near)
	}
}
