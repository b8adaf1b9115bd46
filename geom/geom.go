// Package geom provides the low-level segment-triangle and
// voxel-triangle intersection primitives shared by the rasterizer and
// surface segment queries.
//
// Grounded on original_source/src/surface/findSegmentTriangleIntersection.cpp
// (Möller-Trumbore) and
// original_source/external/triangleVoxelIntersection/triangleVoxelIntersection.cpp
// (Akenine-Möller separating-axis test).
package geom

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
)

const epsilon = 1e-7

// SegmentTriangle runs the Möller-Trumbore test of the segment
// p -> p+dir*length against triangle (a,b,c). ok reports whether an
// intersection exists within [0,length]; t is the intersection
// distance along dir (unnormalised, so the hit point is p+dir*t).
func SegmentTriangle(p, dir lin.V3, length float64, a, b, c lin.V3) (t float64, ok bool) {
	e1 := sub(b, a)
	e2 := sub(c, a)
	h := cross(dir, e2)
	det := dot(e1, h)
	if math.Abs(det) < epsilon {
		return 0, false
	}
	invDet := 1 / det
	s := sub(p, a)
	u := dot(s, h) * invDet
	if u < -epsilon || u > 1+epsilon {
		return 0, false
	}
	q := cross(s, e1)
	v := dot(dir, q) * invDet
	if v < -epsilon || u+v > 1+epsilon {
		return 0, false
	}
	t = dot(e2, q) * invDet
	if t < -epsilon || t > length+epsilon {
		return 0, false
	}
	return t, true
}

// SegmentTriangleExtended is SegmentTriangle with the segment's valid
// range extended by `extent` at both ends, used by streamline
// intersection tests that need a small tolerance band past the
// nominal endpoints.
func SegmentTriangleExtended(p, dir lin.V3, length, extent float64, a, b, c lin.V3) (t float64, ok bool) {
	e1 := sub(b, a)
	e2 := sub(c, a)
	h := cross(dir, e2)
	det := dot(e1, h)
	if math.Abs(det) < epsilon {
		return 0, false
	}
	invDet := 1 / det
	s := sub(p, a)
	u := dot(s, h) * invDet
	if u < -epsilon || u > 1+epsilon {
		return 0, false
	}
	q := cross(s, e1)
	v := dot(dir, q) * invDet
	if v < -epsilon || u+v > 1+epsilon {
		return 0, false
	}
	t = dot(e2, q) * invDet
	if t < -extent || t > length+extent {
		return 0, false
	}
	return t, true
}

// TriangleBoxOverlap reports whether triangle (a,b,c) overlaps the
// axis-aligned box centred at boxCenter with half-extent halfSize
// along each axis, via the Akenine-Möller separating-axis test.
func TriangleBoxOverlap(boxCenter, halfSize lin.V3, a, b, c lin.V3) bool {
	v0 := sub(a, boxCenter)
	v1 := sub(b, boxCenter)
	v2 := sub(c, boxCenter)

	e0 := sub(v1, v0)
	e1 := sub(v2, v1)
	e2 := sub(v0, v2)

	if !axisTest(e0, v0, v2, halfSize) {
		return false
	}
	if !axisTest(e1, v0, v1, halfSize) {
		return false
	}
	if !axisTest(e2, v0, v1, halfSize) {
		return false
	}

	if min3(v0.X, v1.X, v2.X) > halfSize.X || max3(v0.X, v1.X, v2.X) < -halfSize.X {
		return false
	}
	if min3(v0.Y, v1.Y, v2.Y) > halfSize.Y || max3(v0.Y, v1.Y, v2.Y) < -halfSize.Y {
		return false
	}
	if min3(v0.Z, v1.Z, v2.Z) > halfSize.Z || max3(v0.Z, v1.Z, v2.Z) < -halfSize.Z {
		return false
	}

	normal := cross(e0, e1)
	d := -dot(normal, v0)
	return planeBoxOverlap(normal, d, halfSize)
}

// axisTest runs the three cross-product separating-axis tests
// generated by edge e against the box (three calls cover all nine), using the two triangle
// vertices not shared with the edge's originating pair (v0,v2 for e0,
// etc., matching the teacher source's AXISTEST_* macros collapsed
// into one routine per edge since all nine reduce to the same
// min/max-vs-radius shape once the axis direction is built from e).
func axisTest(e, va, vb lin.V3, h lin.V3) bool {
	// axis = (1,0,0) x e = (0,-e.Z,e.Y)
	if !testAxis(lin.V3{X: 0, Y: -e.Z, Z: e.Y}, va, vb, h) {
		return false
	}
	// axis = (0,1,0) x e = (e.Z,0,-e.X)
	if !testAxis(lin.V3{X: e.Z, Y: 0, Z: -e.X}, va, vb, h) {
		return false
	}
	// axis = (0,0,1) x e = (-e.Y,e.X,0)
	if !testAxis(lin.V3{X: -e.Y, Y: e.X, Z: 0}, va, vb, h) {
		return false
	}
	return true
}

func testAxis(axis, va, vb lin.V3, h lin.V3) bool {
	pa := dot(axis, va)
	pb := dot(axis, vb)
	lo, hi := pa, pb
	if lo > hi {
		lo, hi = hi, lo
	}
	rad := math.Abs(axis.X)*h.X + math.Abs(axis.Y)*h.Y + math.Abs(axis.Z)*h.Z
	return !(lo > rad || hi < -rad)
}

func planeBoxOverlap(normal lin.V3, d float64, h lin.V3) bool {
	vmin, vmax := lin.V3{}, lin.V3{}
	set := func(n, hv float64) (float64, float64) {
		if n > 0 {
			return -hv, hv
		}
		return hv, -hv
	}
	vmin.X, vmax.X = set(normal.X, h.X)
	vmin.Y, vmax.Y = set(normal.Y, h.Y)
	vmin.Z, vmax.Z = set(normal.Z, h.Z)
	if dot(normal, vmin)+d > 0 {
		return false
	}
	return dot(normal, vmax)+d >= 0
}

func min3(a, b, c float64) float64 { return math.Min(a, math.Min(b, c)) }
func max3(a, b, c float64) float64 { return math.Max(a, math.Max(b, c)) }

func sub(a, b lin.V3) lin.V3 { return lin.V3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func cross(a, b lin.V3) lin.V3 {
	return lin.V3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
func dot(a, b lin.V3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
