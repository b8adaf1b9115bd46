// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import (
	"fmt"
	"testing"
)

// Aeq/AeqZ back every tolerance check in the affine/quaternion/image code
// below (e.g. InvAffine's singularity check, V3.AeqZ in streamline
// direction tests).
func TestAeq(t *testing.T) {
	if !Aeq(1.0, 1.0+5e-7) {
		t.Error("expected values within Epsilon to compare equal")
	}
	if Aeq(1.0, 1.001) {
		t.Error("expected values outside Epsilon to compare unequal")
	}
}

func TestAeqZ(t *testing.T) {
	if !AeqZ(1e-8) || AeqZ(1e-3) {
		t.Error("AeqZ threshold mismatch")
	}
}

// Lerp underlies image interpolation weights (nearest/linear sampling).
func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.25); !Aeq(got, 12.5) {
		t.Errorf("Lerp(10, 20, 0.25) = %v, want 12.5", got)
	}
}

// Rad/Deg round-trip degrees used throughout orientation/reorientation math.
func TestRadDegRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 30, 90, 180, 270} {
		if got := Deg(Rad(deg)); !Aeq(got, deg) {
			t.Errorf("Deg(Rad(%v)) = %v, want %v", deg, got, deg)
		}
	}
}

// Round is used to snap resampled voxel coordinates; verify standard
// round-half-away-from-zero behaviour.
func TestRound(t *testing.T) {
	cases := map[float64]float64{1.49: 1, 1.5: 2, -1.49: -1, -1.5: -2}
	for in, want := range cases {
		if got := Round(in, 0); got != want {
			t.Errorf("Round(%v, 0) = %v, want %v", in, got, want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-5, 0, 1) != 0 || Clamp(5, 0, 1) != 1 || Clamp(0.5, 0, 1) != 0.5 {
		t.Error("Clamp out-of-range handling is wrong")
	}
}

func TestNang(t *testing.T) {
	if got := Nang(3 * PI); !Aeq(got, PI) {
		t.Errorf("Nang(3*PI) = %v, want %v", got, PI)
	}
}

// Test helpers for the other test case files in this package.

const format = "\ngot\n%s\nwanted\n%s"

func (m *M3) Dump() string {
	format := "[%+2.9f, %+2.9f, %+2.9f]\n"
	str := fmt.Sprintf(format, m.Xx, m.Xy, m.Xz)
	str += fmt.Sprintf(format, m.Yx, m.Yy, m.Yz)
	str += fmt.Sprintf(format, m.Zx, m.Zy, m.Zz)
	return str
}

func (m *M4) Dump() string {
	format := "[%+2.9f, %+2.9f, %+2.9f, %+2.9f]\n"
	str := fmt.Sprintf(format, m.Xx, m.Xy, m.Xz, m.Xw)
	str += fmt.Sprintf(format, m.Yx, m.Yy, m.Yz, m.Yw)
	str += fmt.Sprintf(format, m.Zx, m.Zy, m.Zz, m.Zw)
	str += fmt.Sprintf(format, m.Wx, m.Wy, m.Wz, m.Ww)
	return str
}

func (v *V3) Dump() string { return fmt.Sprintf("%2.9f", *v) }

func (q *Q) Dump() string { return fmt.Sprintf("%2.9f", *q) }
