// SPDX-FileCopyrightText : © 2014-2022 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

import (
	"math"
	"testing"
)

func TestV3AddSub(t *testing.T) {
	a, b := &V3{1, 2, 3}, &V3{4, 5, 6}
	sum := NewV3().Add(a, b)
	if !sum.Eq(&V3{5, 7, 9}) {
		t.Error("Add:", sum.Dump())
	}
	diff := NewV3().Sub(b, a)
	if !diff.Eq(&V3{3, 3, 3}) {
		t.Error("Sub:", diff.Dump())
	}
}

func TestV3ScaleDiv(t *testing.T) {
	v := NewV3S(2, 4, 6)
	v.Scale(v, 0.5)
	if !v.Eq(&V3{1, 2, 3}) {
		t.Error("Scale:", v.Dump())
	}
	v.Div(1.0 / 3)
	if !v.Aeq(&V3{3, 6, 9}) {
		t.Error("Div:", v.Dump())
	}
}

func TestV3DotLen(t *testing.T) {
	v := &V3{3, 4, 0}
	if got := v.Dot(v); got != 25 {
		t.Errorf("Dot = %v, want 25", got)
	}
	if got := v.Len(); got != 5 {
		t.Errorf("Len = %v, want 5", got)
	}
}

// DistSqr and Dist on a 1-2-2 triangle, whose length is exactly 3.
func TestV3DistSqr(t *testing.T) {
	a, b := &V3{0, 0, 0}, &V3{1, 2, 2}
	if got := a.DistSqr(b); got != 9 {
		t.Errorf("DistSqr = %v, want 9", got)
	}
	if got := a.Dist(b); got != 3 {
		t.Errorf("Dist = %v, want 3", got)
	}
}

func TestV3Unit(t *testing.T) {
	v := NewV3S(0, 3, 4)
	v.Unit()
	if !v.Aeq(&V3{0, 0.6, 0.8}) {
		t.Error("Unit:", v.Dump())
	}
	zero := NewV3().Unit()
	if !zero.Eq(&V3{}) {
		t.Error("Unit of a zero vector must stay zero")
	}
}

// Cross of the x and y unit vectors is the z unit vector.
func TestV3Cross(t *testing.T) {
	x, y := &V3{1, 0, 0}, &V3{0, 1, 0}
	got := NewV3().Cross(x, y)
	if !got.Eq(&V3{0, 0, 1}) {
		t.Error("Cross:", got.Dump())
	}
}

func TestV3LerpNlerp(t *testing.T) {
	a, b := &V3{0, 0, 0}, &V3{2, 0, 0}
	mid := NewV3().Lerp(a, b, 0.5)
	if !mid.Eq(&V3{1, 0, 0}) {
		t.Error("Lerp:", mid.Dump())
	}
	n := NewV3().Nlerp(a, &V3{0, 2, 0}, 0.5)
	if !n.Aeq(&V3{0, 1, 0}) {
		t.Error("Nlerp should normalize the interpolated result:", n.Dump())
	}
}

func TestV3Ang(t *testing.T) {
	x, y := &V3{1, 0, 0}, &V3{0, 1, 0}
	if got := x.Ang(y); !Aeq(got, math.Pi/2) {
		t.Errorf("Ang = %v, want pi/2", got)
	}
}

// MultQ is the fast quaternion-vector rotation path; it must agree with
// rotating via the equivalent 3x3 matrix, the path image/io_nifti.go's
// qformToAffine exercises through M3.SetQ.
func TestV3MultQAgreesWithMatrix(t *testing.T) {
	q := NewQ().SetAa(0, 0, 1, Rad(90))
	v := &V3{1, 0, 0}

	viaQuat := NewV3().MultQ(v, q)

	var m M3
	m.SetQ(q)
	viaMatrix := NewV3().MultMv(&m, v)

	if !viaQuat.Aeq(viaMatrix) {
		t.Errorf("MultQ %s disagrees with matrix rotation %s", viaQuat.Dump(), viaMatrix.Dump())
	}
}

// MultvM/MultMv round trips the row-vector and column-vector conventions
// affine.go's InvAffine relies on when it builds M3 from an M4's linear
// part and inverts it.
func TestV3MultvMMultMv(t *testing.T) {
	var m M3
	m.SetS(2, 0, 0, 0, 3, 0, 0, 0, 4)
	v := &V3{1, 1, 1}

	row := NewV3().MultvM(v, &m)
	if !row.Eq(&V3{2, 3, 4}) {
		t.Error("MultvM:", row.Dump())
	}

	var mt M3
	mt.Transpose(&m)
	col := NewV3().MultMv(&mt, v)
	if !col.Eq(&V3{2, 3, 4}) {
		t.Error("MultMv:", col.Dump())
	}
}

func TestV3Plane(t *testing.T) {
	n := &V3{0, 0, 1}
	var p, q V3
	n.Plane(&p, &q)
	if !Aeq(n.Dot(&p), 0) || !Aeq(n.Dot(&q), 0) {
		t.Errorf("Plane vectors must be perpendicular to the normal: p=%s q=%s", p.Dump(), q.Dump())
	}
	if !Aeq(p.Dot(&q), 0) {
		t.Errorf("Plane vectors must be perpendicular to each other: %s . %s", p.Dump(), q.Dump())
	}
}

func TestV3MinMaxAbsNeg(t *testing.T) {
	a, b := &V3{-1, 5, 3}, &V3{2, -4, 3}
	if got := NewV3().Min(a, b); !got.Eq(&V3{-1, -4, 3}) {
		t.Error("Min:", got.Dump())
	}
	if got := NewV3().Max(a, b); !got.Eq(&V3{2, 5, 3}) {
		t.Error("Max:", got.Dump())
	}
	if got := NewV3().Set(a).Abs(); !got.Eq(&V3{1, 5, 3}) {
		t.Error("Abs:", got.Dump())
	}
	if got := NewV3().Neg(a); !got.Eq(&V3{1, -5, -3}) {
		t.Error("Neg:", got.Dump())
	}
}

func TestV3SwapSet(t *testing.T) {
	a, b := &V3{1, 2, 3}, &V3{4, 5, 6}
	a.Swap(b)
	if !a.Eq(&V3{4, 5, 6}) || !b.Eq(&V3{1, 2, 3}) {
		t.Error("Swap did not exchange both vectors")
	}
	c := NewV3().Set(a)
	if !c.Eq(a) {
		t.Error("Set did not copy values")
	}
}
