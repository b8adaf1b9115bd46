package seed

import (
	"math"
	"testing"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/surface"
)

func identityImage(t *testing.T, n int64) *image.Image[uint8] {
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
	return img
}

func TestImageMaskStaysInsideMarkedVoxel(t *testing.T) {
	img := identityImage(t, 4)
	*img.At(2, 2, 2) = 1 // the only nonzero voxel

	s, err := NewImageMask(img, 100, nil)
	if err != nil {
		t.Fatalf("NewImageMask: %v", err)
	}
	for i := 0; i < 50; i++ {
		var p lin.V3
		if st := s.GetSeed(&p, nil, 0); st != OK {
			t.Fatalf("GetSeed: status %v", st)
		}
		if p.X < 1.5 || p.X > 2.5 || p.Y < 1.5 || p.Y > 2.5 || p.Z < 1.5 || p.Z > 2.5 {
			t.Errorf("point %v outside the marked voxel", p)
		}
	}
}

func TestImageMaskBudgetExhausts(t *testing.T) {
	img := identityImage(t, 2)
	for i := range img.Data {
		img.Data[i] = 1
	}
	s, err := NewImageMask(img, 3, nil)
	if err != nil {
		t.Fatalf("NewImageMask: %v", err)
	}
	var p lin.V3
	for i := 0; i < 3; i++ {
		if st := s.GetSeed(&p, nil, 0); st != OK {
			t.Fatalf("GetSeed %d: status %v", i, st)
		}
	}
	if st := s.GetSeed(&p, nil, 0); st != LimitReached {
		t.Errorf("GetSeed after budget: status %v, want LimitReached", st)
	}
}

func TestImageMaskRejectsEmptyMask(t *testing.T) {
	img := identityImage(t, 3)
	if _, err := NewImageMask(img, 10, nil); err == nil {
		t.Error("expected an error for an all-zero mask")
	}
}

func TestSphereSeederStaysInsideBall(t *testing.T) {
	centre := lin.V3{X: 1, Y: 2, Z: 3}
	s, err := NewSphere(centre, 2.5, 200, nil)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	for i := 0; i < 200; i++ {
		var p lin.V3
		if st := s.GetSeed(&p, nil, 0); st != OK {
			t.Fatalf("GetSeed: status %v", st)
		}
		d := math.Sqrt((p.X-centre.X)*(p.X-centre.X) + (p.Y-centre.Y)*(p.Y-centre.Y) + (p.Z-centre.Z)*(p.Z-centre.Z))
		if d > 2.5+1e-9 {
			t.Errorf("point %v is %v from centre, want <= 2.5", p, d)
		}
	}
}

func TestListSeederReplaysInOrder(t *testing.T) {
	points := []lin.V3{{X: 1}, {X: 2}, {X: 3}}
	dirs := []lin.V3{{Y: 1}, {Y: 2}, {Y: 3}}
	s, err := NewList(points, dirs)
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	for i, want := range points {
		var p, d lin.V3
		if st := s.GetSeed(&p, &d, 0); st != OK {
			t.Fatalf("GetSeed %d: status %v", i, st)
		}
		if p != want || d != dirs[i] {
			t.Errorf("GetSeed %d: got point=%v dir=%v, want point=%v dir=%v", i, p, d, want, dirs[i])
		}
	}
	var p lin.V3
	if st := s.GetSeed(&p, nil, 0); st != LimitReached {
		t.Errorf("GetSeed past the list end: status %v, want LimitReached", st)
	}
}

func tetrahedron() *surface.Surface {
	verts := []lin.V3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	faces := [][3]int{
		{0, 2, 1},
		{0, 1, 3},
		{0, 3, 2},
		{1, 2, 3},
	}
	s, _ := surface.New(verts, faces)
	return s
}

func TestSurfaceAreaSeederLiesOnMesh(t *testing.T) {
	s := tetrahedron()
	strat, err := NewSurface(s, nil, true, 100, nil)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	for i := 0; i < 50; i++ {
		var p, n lin.V3
		if st := strat.GetSeed(&p, &n, 0); st != OK {
			t.Fatalf("GetSeed: status %v", st)
		}
		if p.X < -1e-9 || p.Y < -1e-9 || p.Z < -1e-9 {
			t.Errorf("point %v has a negative coordinate, outside the tetrahedron's convex hull", p)
		}
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if math.Abs(l-1) > 1e-6 {
			t.Errorf("normal %v is not unit length (%v)", n, l)
		}
	}
}

func TestSurfaceInteriorSeederIsInside(t *testing.T) {
	s := tetrahedron()
	if err := s.EnablePointCheck(0.05); err != nil {
		t.Fatalf("EnablePointCheck: %v", err)
	}
	strat, err := NewSurfaceInterior(s, 20, nil)
	if err != nil {
		t.Fatalf("NewSurfaceInterior: %v", err)
	}
	for i := 0; i < 20; i++ {
		var p lin.V3
		if st := strat.GetSeed(&p, nil, 0); st != OK {
			t.Fatalf("GetSeed: status %v", st)
		}
		if !s.PointInsideFast(p) {
			t.Errorf("point %v reported outside the surface it was seeded from", p)
		}
	}
}
