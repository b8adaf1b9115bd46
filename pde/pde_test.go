package pde

import (
	"math"
	"testing"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
)

func problemImage(t *testing.T, n int64) *image.Image[float64] {
	t.Helper()
	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = 1, 1, 1, 1
	var order [image.NDIMS]int
	for i := range order {
		order[i] = i
	}
	img, err := image.Create[float64](3, [image.NDIMS]int64{n, n, n, 1, 1, 1, 1}, [image.NDIMS]float64{1, 1, 1, 1, 1, 1, 1}, ijk2xyz, order, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return img
}

// A linear field f(i,j,k)=i is already harmonic and the 6-point stencil
// is exact for it, so Dirichlet boundary values of i should reproduce
// the same linear field at every interior voxel.
func TestLinearBoundaryIsExact(t *testing.T) {
	const n = int64(5)
	problem := problemImage(t, n)
	for k := int64(0); k < n; k++ {
		for j := int64(0); j < n; j++ {
			for i := int64(0); i < n; i++ {
				if i == 0 || i == n-1 || j == 0 || j == n-1 || k == 0 || k == n-1 {
					*problem.At(i, j, k) = float64(i)
				} else {
					*problem.At(i, j, k) = Interior
				}
			}
		}
	}

	solution, err := SolveLaplaceDirichlet(problem)
	if err != nil {
		t.Fatalf("SolveLaplaceDirichlet: %v", err)
	}

	for k := int64(1); k < n-1; k++ {
		for j := int64(1); j < n-1; j++ {
			for i := int64(1); i < n-1; i++ {
				got := *solution.At(i, j, k)
				if math.Abs(got-float64(i)) > 1e-6 {
					t.Errorf("voxel (%d,%d,%d): got %v want %v", i, j, k, got, float64(i))
				}
			}
		}
	}
}

func TestExteriorVoxelBecomesNaN(t *testing.T) {
	const n = int64(5)
	problem := problemImage(t, n)
	for k := int64(0); k < n; k++ {
		for j := int64(0); j < n; j++ {
			for i := int64(0); i < n; i++ {
				switch {
				case i == 0 || i == n-1 || j == 0 || j == n-1 || k == 0 || k == n-1:
					*problem.At(i, j, k) = float64(i)
				case i == 2 && j == 2 && k == 2:
					*problem.At(i, j, k) = Exterior
				default:
					*problem.At(i, j, k) = Interior
				}
			}
		}
	}

	solution, err := SolveLaplaceDirichlet(problem)
	if err != nil {
		t.Fatalf("SolveLaplaceDirichlet: %v", err)
	}

	hole := *solution.At(2, 2, 2)
	if !math.IsNaN(hole) {
		t.Errorf("exterior voxel: want NaN, got %v", hole)
	}

	neighbor := *solution.At(1, 2, 2)
	if math.IsNaN(neighbor) || neighbor < 0 || neighbor > float64(n-1) {
		t.Errorf("interior voxel near the hole: want a finite in-range value, got %v", neighbor)
	}
}

func TestNoInteriorVoxelsIsAnError(t *testing.T) {
	problem := problemImage(t, 3)
	for i := range problem.Data {
		problem.Data[i] = Exterior
	}
	if _, err := SolveLaplaceDirichlet(problem); err == nil {
		t.Error("expected an error when the problem has no Interior voxels")
	}
}
