// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// Hermite performs cubic Hermite interpolation between points p1 and p2
// with tangents m1 and m2 at parameter s in [0,1].
func Hermite(p1, p2, m1, m2, s float64) float64 {
	s2 := s * s
	s3 := s2 * s
	h00 := 2*s3 - 3*s2 + 1
	h10 := s3 - 2*s2 + s
	h01 := -2*s3 + 3*s2
	h11 := s3 - s2
	return h00*p1 + h10*m1 + h01*p2 + h11*m2
}

// HermiteV3 performs componentwise cubic Hermite interpolation of 3D
// points p1,p2 with tangents m1,m2 at parameter s, storing the result in v.
func (v *V3) HermiteV3(p1, p2, m1, m2 *V3, s float64) *V3 {
	v.X = Hermite(p1.X, p2.X, m1.X, m2.X, s)
	v.Y = Hermite(p1.Y, p2.Y, m1.Y, m2.Y, s)
	v.Z = Hermite(p1.Z, p2.Z, m1.Z, m2.Z, s)
	return v
}

// CatmullRomTangent computes the Catmull-Rom tangent at p using its
// neighbours prev and next, the standard way of deriving Hermite tangents
// from a polyline when explicit tangents are not supplied.
func CatmullRomTangent(prev, next *V3) *V3 {
	return &V3{
		X: (next.X - prev.X) * 0.5,
		Y: (next.Y - prev.Y) * 0.5,
		Z: (next.Z - prev.Z) * 0.5,
	}
}

// CubicBSpline evaluates the uniform cubic B-spline basis weights for a
// fractional offset t in [0,1) from the second of four control points,
// i.e. w[0..3] apply to samples at offsets -1,0,1,2. Used by the image
// package's CUBIC interpolation over a 4x4x4 neighbourhood.
func CubicBSpline(t float64) (w [4]float64) {
	t2 := t * t
	t3 := t2 * t
	w[0] = (1 - t) * (1 - t) * (1 - t) / 6
	w[1] = (3*t3 - 6*t2 + 4) / 6
	w[2] = (-3*t3 + 3*t2 + 3*t + 1) / 6
	w[3] = t3 / 6
	return w
}
