package sphere

import (
	"math"
	"testing"

	"github.com/nibrary/nibrary/math/lin"
)

func TestFibonacciSphereUnitLength(t *testing.T) {
	dirs := FibonacciSphere(64)
	if len(dirs) != 64 {
		t.Fatalf("got %d directions, want 64", len(dirs))
	}
	for i, d := range dirs {
		l := math.Sqrt(d.X*d.X + d.Y*d.Y + d.Z*d.Z)
		if math.Abs(l-1) > 1e-9 {
			t.Errorf("direction %d: length %v, want 1", i, l)
		}
	}
}

func TestDiscretizationNearestIndex(t *testing.T) {
	dirs := FibonacciSphere(200)
	d := NewDiscretization(dirs, false)
	for i, dir := range dirs {
		if got := d.NearestIndex(dir); got != i {
			t.Errorf("NearestIndex(dirs[%d]) = %d, want %d", i, got, i)
		}
	}
}

func TestDiscretizationEvenSymmetry(t *testing.T) {
	dirs := FibonacciSphere(100)
	d := NewDiscretization(dirs, true)
	for i, dir := range dirs {
		antipodal := lin.V3{X: -dir.X, Y: -dir.Y, Z: -dir.Z}
		if got := d.NearestIndex(antipodal); got != i {
			t.Errorf("antipodal NearestIndex for dirs[%d] = %d, want %d", i, got, i)
		}
	}
}

func TestSH2SFConstantBasis(t *testing.T) {
	b := NewBasis(0, false)
	if n := b.CoeffCount(); n != 1 {
		t.Fatalf("order-0 basis has %d coefficients, want 1", n)
	}
	sh := []float64{2 * math.Sqrt(math.Pi)} // constant term that evaluates to 1 everywhere
	for _, dir := range FibonacciSphere(20) {
		v := b.SH2SF(sh, dir)
		if math.Abs(v-1) > 1e-9 {
			t.Errorf("SH2SF(dir=%v) = %v, want 1", dir, v)
		}
	}
}

func TestSF2SHRoundTrip(t *testing.T) {
	b := NewBasis(4, false)
	dirs := FibonacciSphere(600)

	want := make([]float64, b.CoeffCount())
	for i := range want {
		want[i] = float64(i+1) * 0.1
	}

	sf := make([]float64, len(dirs))
	for i, d := range dirs {
		sf[i] = b.SH2SF(want, d)
	}
	got := b.SF2SH(sf, dirs)

	// Equal-weight discrete quadrature over a quasi-uniform point set is
	// only an approximate SH projection, not an exact cubature rule.
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.1 {
			t.Errorf("coefficient %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestReorientIdentity(t *testing.T) {
	f, err := Reorient("XYZ")
	if err != nil {
		t.Fatalf("Reorient: %v", err)
	}
	d := lin.V3{X: 1, Y: 2, Z: 3}
	got := f(d)
	if got != d {
		t.Errorf("identity reorient: got %v want %v", got, d)
	}
}

func TestReorientSignFlip(t *testing.T) {
	f, err := Reorient("Xyz")
	if err != nil {
		t.Fatalf("Reorient: %v", err)
	}
	got := f(lin.V3{X: 1, Y: 2, Z: 3})
	want := lin.V3{X: 1, Y: -2, Z: -3}
	if got != want {
		t.Errorf("sign-flip reorient: got %v want %v", got, want)
	}
}

func TestReorientAxisSwap(t *testing.T) {
	f, err := Reorient("XZY")
	if err != nil {
		t.Fatalf("Reorient: %v", err)
	}
	got := f(lin.V3{X: 1, Y: 2, Z: 3})
	want := lin.V3{X: 1, Y: 3, Z: 2}
	if got != want {
		t.Errorf("axis-swap reorient: got %v want %v", got, want)
	}
}

func TestReorientRejectsNonPermutation(t *testing.T) {
	if _, err := Reorient("XXY"); err == nil {
		t.Error("expected an error for a non-permutation code")
	}
}

func TestRotateIdentityPreservesCoefficients(t *testing.T) {
	b := NewBasis(4, false)
	quad := NewDiscretization(FibonacciSphere(600), false)

	sh := make([]float64, b.CoeffCount())
	for i := range sh {
		sh[i] = float64(i+1) * 0.1
	}

	var identity lin.M4
	identity.Xx, identity.Yy, identity.Zz, identity.Ww = 1, 1, 1, 1

	got := Rotate(b, sh, identity, quad)
	for i := range sh {
		if math.Abs(got[i]-sh[i]) > 0.1 {
			t.Errorf("coefficient %d: got %v want %v", i, got[i], sh[i])
		}
	}
}
