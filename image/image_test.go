package image

import (
	"math"
	"testing"

	"github.com/nibrary/nibrary/math/lin"
)

func unitImage(t *testing.T) *Image[float32] {
	t.Helper()
	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = 1, 1, 1, 1
	var order [NDIMS]int
	for i := range order {
		order[i] = i
	}
	img, err := Create[float32](3, [NDIMS]int64{4, 4, 4, 1, 1, 1, 1}, [NDIMS]float64{1, 1, 1, 1, 1, 1, 1}, ijk2xyz, order, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := range img.Data {
		img.Data[i] = float32(i)
	}
	return img
}

func TestAffineRoundTrip(t *testing.T) {
	img := unitImage(t)
	p := lin.V3{X: 1.3, Y: -2.7, Z: 0.4}
	world := img.Vox2World(p)
	back := img.World2Vox(world)
	if math.Abs(back.X-p.X) > 1e-5 || math.Abs(back.Y-p.Y) > 1e-5 || math.Abs(back.Z-p.Z) > 1e-5 {
		t.Errorf("round trip mismatch: got %v want %v", back, p)
	}
}

func TestIndexPermutationInvariance(t *testing.T) {
	canonical := unitImage(t)

	var reordered [NDIMS]int
	reordered[0], reordered[1] = 1, 0
	for i := 2; i < NDIMS; i++ {
		reordered[i] = i
	}
	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = 1, 1, 1, 1
	permuted, err := Create[float32](3, canonical.ImgDims, canonical.PixDims, ijk2xyz, reordered, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i, j, k := int64(0), int64(0), int64(0); k < 4; k++ {
		for j = 0; j < 4; j++ {
			for i = 0; i < 4; i++ {
				*permuted.At(i, j, k) = *canonical.At(i, j, k)
			}
		}
	}
	for i, j, k := int64(0), int64(0), int64(0); k < 4; k++ {
		for j = 0; j < 4; j++ {
			for i = 0; i < 4; i++ {
				a, b := *canonical.At(i, j, k), *permuted.At(i, j, k)
				if a != b {
					t.Fatalf("sample mismatch at (%d,%d,%d): %v != %v", i, j, k, a, b)
				}
			}
		}
	}
}

func TestSampleNearestMatchesGrid(t *testing.T) {
	img := unitImage(t)
	img.InterpMethod = NEAREST
	want := *img.At(2, 1, 3)
	got := img.Sample(lin.V3{X: 2, Y: 1, Z: 3}, 0)
	if got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestSampleLinearMidpoint(t *testing.T) {
	img := unitImage(t)
	img.InterpMethod = LINEAR
	a := *img.At(1, 1, 1)
	b := *img.At(2, 1, 1)
	got := img.Sample(lin.V3{X: 1.5, Y: 1, Z: 1}, 0)
	want := (a + b) / 2
	if math.Abs(float64(got-want)) > 1e-4 {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestSampleOutsideReturnsOutsideVal(t *testing.T) {
	img := unitImage(t)
	img.OutsideVal = -1
	img.InterpMethod = LINEAR
	got := img.Sample(lin.V3{X: -10, Y: -10, Z: -10}, 0)
	if got != -1 {
		t.Errorf("got %v want -1", got)
	}
}

func TestMinMax(t *testing.T) {
	img := unitImage(t)
	min, max := MinMax(img)
	if min != 0 || max != float32(img.NumEl()-1) {
		t.Errorf("got min=%v max=%v", min, max)
	}
}

func TestThresh(t *testing.T) {
	img := unitImage(t)
	Thresh(img, 10)
	for i, v := range img.Data {
		if i <= 10 && v != 0 {
			t.Fatalf("index %d not zeroed: %v", i, v)
		}
		if i > 10 && v == 0 {
			t.Fatalf("index %d unexpectedly zeroed", i)
		}
	}
}

func TestAdd(t *testing.T) {
	a := unitImage(t)
	b := unitImage(t)
	out := CreateFromTemplate[float32](a, false)
	Add(out, a, b)
	for i := range out.Data {
		if out.Data[i] != a.Data[i]+b.Data[i] {
			t.Fatalf("index %d: got %v want %v", i, out.Data[i], a.Data[i]+b.Data[i])
		}
	}
}

func TestPadPreservesWorldOrigin(t *testing.T) {
	img := unitImage(t)
	padded := Pad(img, 2, float32(0))
	origCorner := img.Vox2World(lin.V3{})
	paddedCorner := padded.Vox2World(lin.V3{X: 2, Y: 2, Z: 2})
	if math.Abs(origCorner.X-paddedCorner.X) > 1e-6 {
		t.Errorf("origin shifted: %v vs %v", origCorner, paddedCorner)
	}
}

func TestDilateGrowsSingleVoxel(t *testing.T) {
	img := unitImage(t)
	for i := range img.Data {
		img.Data[i] = 0
	}
	*img.At(1, 1, 1) = 1
	out := Dilate(img, Conn6)
	if *out.At(1, 1, 1) == 0 {
		t.Fatal("seed voxel lost")
	}
	if *out.At(0, 1, 1) == 0 {
		t.Fatal("expected neighbour to be dilated")
	}
	if *out.At(3, 1, 1) != 0 {
		t.Fatal("non-adjacent voxel unexpectedly dilated")
	}
}

func TestNonZeroIndices(t *testing.T) {
	img := unitImage(t)
	for i := range img.Data {
		img.Data[i] = 0
	}
	*img.At(0, 0, 0) = 5
	*img.At(3, 3, 3) = 7
	idx := NonZeroIndices(img)
	if len(idx) != 2 {
		t.Fatalf("got %d indices, want 2", len(idx))
	}
}

func TestClosestCanonicalAxes(t *testing.T) {
	var m lin.M4
	m.Xx, m.Yy, m.Zz, m.Ww = -1, 1, 1, 1
	axis, sign := ClosestCanonicalAxes(m)
	if axis != [3]int{0, 1, 2} {
		t.Fatalf("got axis %v", axis)
	}
	if sign[0] != -1 || sign[1] != 1 || sign[2] != 1 {
		t.Fatalf("got sign %v", sign)
	}
}
