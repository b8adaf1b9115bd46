package surface

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
)

// FastWindingNumber estimates the generalised winding number of p with
// respect to every face of the surface: 1 inside a closed mesh, 0
// outside, per spec.md §4.3's fast-winding-number BVH. It walks the
// same AABB tree used for nearest-point queries down to every leaf and
// sums each face's exact solid angle; no subtree is approximated, so
// the cost is linear in the number of faces.
func (s *Surface) FastWindingNumber(p lin.V3) float64 {
	tree := s.AABBTree()
	if tree.root == nil {
		return 0
	}
	var sum float64
	var walk func(n *aabbNode)
	walk = func(n *aabbNode) {
		if n == nil {
			return
		}
		if n.face >= 0 {
			tri := s.Faces[n.face]
			sum += solidAngle(p, s.Vertices[tri[0]], s.Vertices[tri[1]], s.Vertices[tri[2]])
			return
		}
		// no far-field approximation: per-node dipole data is not
		// stored, so both children are always visited.
		walk(n.left)
		walk(n.right)
	}
	walk(tree.root)
	return sum / (4 * math.Pi)
}

// solidAngle returns the signed solid angle subtended by triangle abc
// as seen from p (Van Oosterom & Strackee's formula).
func solidAngle(p, a, b, c lin.V3) float64 {
	ra := sub(a, p)
	rb := sub(b, p)
	rc := sub(c, p)
	la, lb, lc := norm(ra), norm(rb), norm(rc)
	if la < 1e-12 || lb < 1e-12 || lc < 1e-12 {
		return 0
	}
	numerator := dot(ra, cross(rb, rc))
	denominator := la*lb*lc + dot(ra, rb)*lc + dot(rb, rc)*la + dot(rc, ra)*lb
	return 2 * math.Atan2(numerator, denominator)
}

// PointInside reports whether p lies inside the closed components of
// the surface, per the winding-number invariant of spec.md §8.5:
// isPointInside(p) == fastWindingNumber(p) > 0.5.
func (s *Surface) PointInside(p lin.V3) bool {
	return s.FastWindingNumber(p) > 0.5
}
