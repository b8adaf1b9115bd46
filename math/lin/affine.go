// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Affine helpers extend M4 with the inverse and composition operations
// needed by image and surface code to move between voxel and world space.
// An affine matrix here is stored row-major as [Xx Xy Xz Xw / Yx.. / Zx.. /
// Wx Wy Wz Ww] with the linear part in the X/Y/Z rows and the translation
// in the W row (Ww == 1), matching the convention used elsewhere in this
// package: p' = [p 1] * M.

// InvAffine sets m to the inverse of affine matrix a, treating a as
// [R 0; t 1] so that m = [R^-1 0; -t*R^-1 1]. The matrix a must have a
// non-singular 3x3 linear part and Ww == 1; the caller is responsible for
// checking the returned ok flag.
func (m *M4) InvAffine(a *M4) (ok bool) {
	var r, rinv M3
	r.SetM4(a)
	if AeqZ(r.Det()) {
		return false
	}
	rinv.Inv(&r)

	tx, ty, tz := a.Wx, a.Wy, a.Wz
	m.Xx, m.Xy, m.Xz, m.Xw = rinv.Xx, rinv.Xy, rinv.Xz, 0
	m.Yx, m.Yy, m.Yz, m.Yw = rinv.Yx, rinv.Yy, rinv.Yz, 0
	m.Zx, m.Zy, m.Zz, m.Zw = rinv.Zx, rinv.Zy, rinv.Zz, 0
	m.Wx = -(tx*rinv.Xx + ty*rinv.Yx + tz*rinv.Zx)
	m.Wy = -(tx*rinv.Xy + ty*rinv.Yy + tz*rinv.Zy)
	m.Wz = -(tx*rinv.Xz + ty*rinv.Yz + tz*rinv.Zz)
	m.Ww = 1
	return true
}

// AppPoint applies affine matrix m to world/voxel point p, treating p as a
// row vector with an implicit w=1: p' = p*R + t.
func (m *M4) AppPoint(p *V3) *V3 {
	out := &V3{}
	out.X = p.X*m.Xx + p.Y*m.Yx + p.Z*m.Zx + m.Wx
	out.Y = p.X*m.Xy + p.Y*m.Yy + p.Z*m.Zy + m.Wy
	out.Z = p.X*m.Xz + p.Y*m.Yz + p.Z*m.Zz + m.Wz
	return out
}

// AppVector applies only the linear part of m (no translation), suitable
// for direction vectors and normals.
func (m *M4) AppVector(v *V3) *V3 {
	out := &V3{}
	out.X = v.X*m.Xx + v.Y*m.Yx + v.Z*m.Zx
	out.Y = v.X*m.Xy + v.Y*m.Yy + v.Z*m.Zy
	out.Z = v.X*m.Xz + v.Y*m.Yz + v.Z*m.Zz
	return out
}
