package surface

import (
	"math"
	"sort"

	"github.com/nibrary/nibrary/math/lin"
)

// box is an axis-aligned bounding box, the same Sx/Sy/Sz (smallest) +
// Lx/Ly/Lz (largest) shape as physics.Abox in the teacher repo,
// generalised here to bound mesh faces instead of rigid-body shapes.
type box struct {
	Sx, Sy, Sz float64
	Lx, Ly, Lz float64
}

func boxOf(a, b, c lin.V3) box {
	bx := box{Sx: a.X, Sy: a.Y, Sz: a.Z, Lx: a.X, Ly: a.Y, Lz: a.Z}
	bx.grow(b)
	bx.grow(c)
	return bx
}

func (b *box) grow(p lin.V3) {
	if p.X < b.Sx {
		b.Sx = p.X
	}
	if p.Y < b.Sy {
		b.Sy = p.Y
	}
	if p.Z < b.Sz {
		b.Sz = p.Z
	}
	if p.X > b.Lx {
		b.Lx = p.X
	}
	if p.Y > b.Ly {
		b.Ly = p.Y
	}
	if p.Z > b.Lz {
		b.Lz = p.Z
	}
}

func union(a, b box) box {
	return box{
		Sx: math.Min(a.Sx, b.Sx), Sy: math.Min(a.Sy, b.Sy), Sz: math.Min(a.Sz, b.Sz),
		Lx: math.Max(a.Lx, b.Lx), Ly: math.Max(a.Ly, b.Ly), Lz: math.Max(a.Lz, b.Lz),
	}
}

func (b box) sqDistTo(p lin.V3) float64 {
	dx := math.Max(math.Max(b.Sx-p.X, 0), p.X-b.Lx)
	dy := math.Max(math.Max(b.Sy-p.Y, 0), p.Y-b.Ly)
	dz := math.Max(math.Max(b.Sz-p.Z, 0), p.Z-b.Lz)
	return dx*dx + dy*dy + dz*dz
}

func (b box) intersectsSegment(a, d lin.V3, tMax float64) bool {
	tmin, tmax := 0.0, tMax
	for axis := 0; axis < 3; axis++ {
		var o, dir, lo, hi float64
		switch axis {
		case 0:
			o, dir, lo, hi = a.X, d.X, b.Sx, b.Lx
		case 1:
			o, dir, lo, hi = a.Y, d.Y, b.Sy, b.Ly
		default:
			o, dir, lo, hi = a.Z, d.Z, b.Sz, b.Lz
		}
		if math.Abs(dir) < 1e-15 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t0, t1 := (lo-o)/dir, (hi-o)/dir
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}

// aabbNode is a node of a median-split bounding volume hierarchy over
// faces.
type aabbNode struct {
	bounds      box
	left, right *aabbNode
	face        int // valid (>=0) only at leaves
}

type aabbTree struct {
	root *aabbNode
}

// AABBTree returns the lazily-built bounding volume hierarchy over
// this surface's faces.
func (s *Surface) AABBTree() *aabbTree {
	s.aabbOnce.Do(func() {
		s.aabb = buildAABBTree(s)
	})
	return s.aabb
}

func buildAABBTree(s *Surface) *aabbTree {
	if s.NF() == 0 {
		return &aabbTree{}
	}
	type item struct {
		face   int
		bounds box
		centre lin.V3
	}
	items := make([]item, s.NF())
	for f, tri := range s.Faces {
		a, b, c := s.Vertices[tri[0]], s.Vertices[tri[1]], s.Vertices[tri[2]]
		bx := boxOf(a, b, c)
		items[f] = item{face: f, bounds: bx, centre: lin.V3{
			X: (bx.Sx + bx.Lx) / 2, Y: (bx.Sy + bx.Ly) / 2, Z: (bx.Sz + bx.Lz) / 2,
		}}
	}

	var build func(idx []int) *aabbNode
	build = func(idx []int) *aabbNode {
		if len(idx) == 1 {
			return &aabbNode{bounds: items[idx[0]].bounds, face: items[idx[0]].face}
		}
		var bounds box
		bounds = items[idx[0]].bounds
		for _, i := range idx[1:] {
			bounds = union(bounds, items[i].bounds)
		}
		extentX, extentY, extentZ := bounds.Lx-bounds.Sx, bounds.Ly-bounds.Sy, bounds.Lz-bounds.Sz
		axis := 0
		if extentY > extentX && extentY >= extentZ {
			axis = 1
		} else if extentZ > extentX && extentZ >= extentY {
			axis = 2
		}
		sort.Slice(idx, func(i, j int) bool {
			switch axis {
			case 0:
				return items[idx[i]].centre.X < items[idx[j]].centre.X
			case 1:
				return items[idx[i]].centre.Y < items[idx[j]].centre.Y
			default:
				return items[idx[i]].centre.Z < items[idx[j]].centre.Z
			}
		})
		mid := len(idx) / 2
		left := build(append([]int{}, idx[:mid]...))
		right := build(append([]int{}, idx[mid:]...))
		return &aabbNode{bounds: union(left.bounds, right.bounds), left: left, right: right, face: -1}
	}

	all := make([]int, s.NF())
	for i := range all {
		all[i] = i
	}
	return &aabbTree{root: build(all)}
}

// NearestPoint returns the squared distance, closest point and face
// index of the nearest face to p.
func (s *Surface) NearestPoint(p lin.V3) (sqDist float64, closest lin.V3, face int) {
	tree := s.AABBTree()
	if tree.root == nil {
		return math.Inf(1), lin.V3{}, -1
	}
	best := math.Inf(1)
	face = -1
	var walk func(n *aabbNode)
	walk = func(n *aabbNode) {
		if n == nil || n.bounds.sqDistTo(p) >= best {
			return
		}
		if n.face >= 0 {
			tri := s.Faces[n.face]
			cp := closestPointOnTriangle(p, s.Vertices[tri[0]], s.Vertices[tri[1]], s.Vertices[tri[2]])
			d := sub(p, cp)
			sq := dot(d, d)
			if sq < best {
				best = sq
				closest = cp
				face = n.face
			}
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(tree.root)
	return best, closest, face
}

// SignedDistance returns +/- sqrt of the nearest-face squared
// distance, signed by the direction from the closest face's normal
// (spec.md §4.3).
func (s *Surface) SignedDistance(p lin.V3) float64 {
	sq, closest, face := s.NearestPoint(p)
	if face < 0 {
		return math.Inf(1)
	}
	d := math.Sqrt(sq)
	n := s.FaceNormal(face)
	if dot(n, sub(p, closest)) < 0 {
		return -d
	}
	return d
}

func closestPointOnTriangle(p, a, b, c lin.V3) lin.V3 {
	ab := sub(b, a)
	ac := sub(c, a)
	ap := sub(p, a)

	d1 := dot(ab, ap)
	d2 := dot(ac, ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := sub(p, b)
	d3 := dot(ab, bp)
	d4 := dot(ac, bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return lin.V3{X: a.X + v*ab.X, Y: a.Y + v*ab.Y, Z: a.Z + v*ab.Z}
	}

	cp := sub(p, c)
	d5 := dot(ab, cp)
	d6 := dot(ac, cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return lin.V3{X: a.X + w*ac.X, Y: a.Y + w*ac.Y, Z: a.Z + w*ac.Z}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return lin.V3{X: b.X + w*(c.X-b.X), Y: b.Y + w*(c.Y-b.Y), Z: b.Z + w*(c.Z-b.Z)}
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return lin.V3{X: a.X + ab.X*v + ac.X*w, Y: a.Y + ab.Y*v + ac.Y*w, Z: a.Z + ab.Z*v + ac.Z*w}
}
