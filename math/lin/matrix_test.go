// Copyright © 2013-2014 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestM3SetEq(t *testing.T) {
	var m M3
	m.SetS(1, 0, 0, 0, 1, 0, 0, 0, 1)
	if !m.Eq(M3I) {
		t.Error("SetS:", m.Dump())
	}
	var n M3
	n.Set(&m)
	if !n.Eq(&m) {
		t.Error("Set did not copy values")
	}
}

// SetM4 extracts the linear part used by affine.go's InvAffine when it
// inverts an image's ijk2xyz.
func TestM3SetM4(t *testing.T) {
	a := M4{Xx: 2, Yy: 3, Zz: 4, Wx: 10, Wy: 20, Wz: 30, Ww: 1}
	var m M3
	m.SetM4(&a)
	if !m.Eq(&M3{Xx: 2, Yy: 3, Zz: 4}) {
		t.Error("SetM4 did not extract the top-left 3x3:", m.Dump())
	}
}

func TestM3Transpose(t *testing.T) {
	a := M3{Xx: 1, Xy: 2, Xz: 3, Yx: 4, Yy: 5, Yz: 6, Zx: 7, Zy: 8, Zz: 9}
	var m M3
	m.Transpose(&a)
	want := M3{Xx: 1, Xy: 4, Xz: 7, Yx: 2, Yy: 5, Yz: 8, Zx: 3, Zy: 6, Zz: 9}
	if !m.Eq(&want) {
		t.Error("Transpose:", m.Dump())
	}
}

func TestM3AddSub(t *testing.T) {
	a, b := M3I, &M3{Xx: 1, Yy: 1, Zz: 1}
	var sum M3
	sum.Add(a, b)
	if !sum.Eq(&M3{Xx: 2, Yy: 2, Zz: 2}) {
		t.Error("Add:", sum.Dump())
	}
	var diff M3
	diff.Sub(&sum, b)
	if !diff.Eq(a) {
		t.Error("Sub:", diff.Dump())
	}
}

func TestM3MultIdentity(t *testing.T) {
	a := M3{Xx: 1, Xy: 2, Xz: 3, Yx: 4, Yy: 5, Yz: 6, Zx: 7, Zy: 8, Zz: 9}
	var m M3
	m.Mult(&a, M3I)
	if !m.Eq(&a) {
		t.Error("Mult by identity should be a no-op:", m.Dump())
	}
}

// MultLtR(l, r) must agree with Transpose(l) then Mult.
func TestM3MultLtR(t *testing.T) {
	l := M3{Xx: 1, Xy: 2, Xz: 0, Yx: 0, Yy: 1, Yz: 0, Zx: 0, Zy: 0, Zz: 1}
	r := M3{Xx: 2, Xy: 0, Xz: 0, Yx: 0, Yy: 2, Yz: 0, Zx: 0, Zy: 0, Zz: 2}

	var lt, want M3
	lt.Transpose(&l)
	want.Mult(&lt, &r)

	var got M3
	got.MultLtR(&l, &r)
	if !got.Eq(&want) {
		t.Error("MultLtR:", got.Dump())
	}
}

func TestM4TranslateTMMT(t *testing.T) {
	var tm M4
	tm.Set(M4I)
	tm.TranslateTM(1, 2, 3)
	if !tm.Aeq(&M4{Xx: 1, Yy: 1, Zz: 1, Wx: 1, Wy: 2, Wz: 3, Ww: 1}) {
		t.Error("TranslateTM:", tm.Dump())
	}

	var mt M4
	mt.Set(M4I)
	mt.TranslateMT(1, 2, 3)
	if !mt.Aeq(&M4{Xx: 1, Yy: 1, Zz: 1, Wx: 1, Wy: 2, Wz: 3, Ww: 1}) {
		t.Error("TranslateMT:", mt.Dump())
	}
}

func TestM3ScaleVariants(t *testing.T) {
	var m M3
	m.Set(M3I)
	m.ScaleSM(2, 3, 4)
	if !m.Eq(&M3{Xx: 2, Yy: 3, Zz: 4}) {
		t.Error("ScaleSM:", m.Dump())
	}
	m.Set(M3I)
	m.ScaleV(&V3{2, 3, 4})
	if !m.Eq(&M3{Xx: 2, Yy: 3, Zz: 4}) {
		t.Error("ScaleV:", m.Dump())
	}
}

// SetQ is the path image/io_nifti.go's qformToAffine builds a voxel-to-RAS
// rotation with; a 90 degree turn about Z must match the matching axis-angle
// matrix.
func TestM3SetQMatchesSetAa(t *testing.T) {
	q := NewQ().SetAa(0, 0, 1, Rad(90))
	var viaQ M3
	viaQ.SetQ(q)

	var viaAa M3
	viaAa.SetAa(0, 0, 1, Rad(90))

	if !viaQ.Aeq(&viaAa) {
		t.Errorf("SetQ %s disagrees with SetAa %s", viaQ.Dump(), viaAa.Dump())
	}
}

func TestM3SetSkewSym(t *testing.T) {
	var m M3
	m.SetSkewSym(&V3{1, 2, 3})
	if !m.Aeq(&M3{Xy: -3, Xz: 2, Yx: 3, Yz: -1, Zx: -2, Zy: 1}) {
		t.Error("SetSkewSym:", m.Dump())
	}
}

// Det/Inv are exactly the pair affine.go's InvAffine calls on an image's
// rotation+scale block.
func TestM3DetInv(t *testing.T) {
	m := M3{Xx: 2, Yy: 4, Zz: 5}
	if got := m.Det(); got != 40 {
		t.Errorf("Det = %v, want 40", got)
	}
	var inv, identity M3
	inv.Inv(&m)
	identity.Mult(&m, &inv)
	if !identity.Aeq(M3I) {
		t.Error("m * Inv(m) should be the identity:", identity.Dump())
	}
}

func TestM3InvSingular(t *testing.T) {
	var singular, inv M3 // all-zero matrix has Det()==0
	inv.Inv(&singular)
	if !inv.Eq(&M3{}) {
		t.Error("Inv of a singular matrix must leave m unchanged")
	}
}

func TestM3SetAa(t *testing.T) {
	var m M3
	m.SetAa(1, 0, 0, Rad(90))
	rotated := NewV3().MultMv(&m, &V3{0, 1, 0})
	if !rotated.Aeq(&V3{0, 0, 1}) {
		t.Error("rotating Y by 90deg about X should give Z:", rotated.Dump())
	}
}

func TestM4OrthoDiagonal(t *testing.T) {
	var m M4
	m.Ortho(-1, 1, -1, 1, 1, 10)
	if m.Xx == 0 || m.Yy == 0 || m.Zz == 0 {
		t.Error("Ortho should produce a non-degenerate scaling block:", m.Dump())
	}
}

func TestM4PerspInvRoundTrip(t *testing.T) {
	var p, pinv M4
	p.Persp(60, 1.333, 0.1, 100)
	pinv.PerspInv(60, 1.333, 0.1, 100)
	// PerspInv is the algebraic inverse of the clip-space block Persp
	// builds; multiplying the two should restore a diagonal (identity on
	// the axes Persp actually uses).
	var m M4
	m.Mult(&p, &pinv)
	if !Aeq(m.Xx, 1) || !Aeq(m.Yy, 1) {
		t.Error("Persp * PerspInv should restore the X/Y scaling:", m.Dump())
	}
}
