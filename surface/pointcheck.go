package surface

import (
	"math"

	"github.com/nibrary/nibrary/geom"
	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/raster"
)

// pointCheck is the rasterized classification grid built by
// EnablePointCheck, grounded on
// original_source/src/surface/isPointInsideSurface.cpp's
// maskAndBoundary/grid pair.
type pointCheck struct {
	classification *raster.Classification
	gridRes        float64
	closed         *Surface // union of closed components, or nil
	open           *Surface // union of open components, or nil
}

// SurfaceThickness is the boundary band (world units) within which a
// BOUNDARY voxel's signed distance still counts as "inside" (spec.md
// §4.3's point-in-mesh policy).
const SurfaceThickness = 1e-3

// EnablePointCheck rasterizes the surface at gridRes voxel spacing so
// that PointInsideFast can classify points without an AABB query in
// the common case. Idempotent: later calls are no-ops.
func (s *Surface) EnablePointCheck(gridRes float64) error {
	var err error
	s.rasterOnce.Do(func() {
		s.raster, err = buildPointCheck(s, gridRes)
	})
	return err
}

func buildPointCheck(s *Surface, gridRes float64) (*pointCheck, error) {
	if s.NV() == 0 {
		return &pointCheck{gridRes: gridRes}, nil
	}
	bbMin, bbMax := s.Vertices[0], s.Vertices[0]
	for _, v := range s.Vertices {
		if v.X < bbMin.X {
			bbMin.X = v.X
		}
		if v.Y < bbMin.Y {
			bbMin.Y = v.Y
		}
		if v.Z < bbMin.Z {
			bbMin.Z = v.Z
		}
		if v.X > bbMax.X {
			bbMax.X = v.X
		}
		if v.Y > bbMax.Y {
			bbMax.Y = v.Y
		}
		if v.Z > bbMax.Z {
			bbMax.Z = v.Z
		}
	}
	pad := 2 * gridRes
	bbMin = lin.V3{X: bbMin.X - pad, Y: bbMin.Y - pad, Z: bbMin.Z - pad}
	bbMax = lin.V3{X: bbMax.X + pad, Y: bbMax.Y + pad, Z: bbMax.Z + pad}

	ref, err := image.CreateFromBoundingBox[uint8](bbMin, bbMax, gridRes, [3]int64{}, false)
	if err != nil {
		return nil, err
	}
	cls := raster.Rasterize(s, ref, raster.MaskWithBoundary)

	var closedParts, openParts []*Surface
	for _, c := range s.ConnectedComponents() {
		if c.isClosedComponent() {
			closedParts = append(closedParts, c)
		} else {
			openParts = append(openParts, c)
		}
	}

	pc := &pointCheck{classification: cls, gridRes: gridRes}
	if len(closedParts) > 0 {
		pc.closed = mergeComponents(closedParts)
	}
	if len(openParts) > 0 {
		pc.open = mergeComponents(openParts)
	}
	return pc, nil
}

func mergeComponents(parts []*Surface) *Surface {
	out := &Surface{}
	for _, p := range parts {
		base := len(out.Vertices)
		out.Vertices = append(out.Vertices, p.Vertices...)
		for _, f := range p.Faces {
			out.Faces = append(out.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	return out
}

// PointInsideFast reports whether world point p lies inside the surface,
// using the rasterized grid when EnablePointCheck has been called and
// falling back to the AABB winding-number query otherwise (spec.md
// §4.3's isPointInside policy).
func (s *Surface) PointInsideFast(p lin.V3) bool {
	if s.raster == nil || s.raster.classification == nil {
		return s.PointInside(p)
	}
	pc := s.raster
	img := pc.classification.Img
	ijk := img.World2Vox(p)
	i, j, k := int64(math.Round(ijk.X)), int64(math.Round(ijk.Y)), int64(math.Round(ijk.Z))
	if !img.InBounds3(i, j, k) {
		return false
	}
	vox := raster.Class(*img.At(i, j, k))
	switch vox {
	case raster.Outside:
		return false
	case raster.Inside:
		return true
	}

	if pc.closed != nil && pc.closed.PointInside(p) {
		return true
	}
	if pc.open != nil {
		d := pc.open.SignedDistance(p)
		return d > 0 && d <= SurfaceThickness
	}
	return false
}

// Intersect walks the segment p -> p+dir*length through the point-check
// grid, testing every BOUNDARY voxel's face list via Möller-Trumbore,
// and returns whether each endpoint started inside the surface, the
// nearest intersecting face (-1 if none), and the intersection
// distance along dir (NaN if none), per spec.md §4.3.
func (s *Surface) Intersect(p, dir lin.V3, length float64) (begInside, endInside bool, face int, dist float64) {
	if s.raster == nil || s.raster.classification == nil {
		panic("surface: Intersect called before EnablePointCheck")
	}
	pc := s.raster
	img := pc.classification.Img

	begInside = s.PointInsideFast(p)
	end := lin.V3{X: p.X + dir.X*length, Y: p.Y + dir.Y*length, Z: p.Z + dir.Z*length}
	endInside = s.PointInsideFast(end)

	face = -1
	dist = math.NaN()
	best := math.Inf(1)

	steps := int(length/pc.gridRes) + 2
	for step := 0; step <= steps; step++ {
		t := float64(step) / float64(steps) * length
		pt := lin.V3{X: p.X + dir.X*t, Y: p.Y + dir.Y*t, Z: p.Z + dir.Z*t}
		ijk := img.World2Vox(pt)
		i, j, k := int64(math.Round(ijk.X)), int64(math.Round(ijk.Y)), int64(math.Round(ijk.Z))
		if !img.InBounds3(i, j, k) {
			continue
		}
		idx := img.Sub2ind([image.NDIMS]int64{i, j, k, 0, 0, 0, 0})
		if raster.Class(img.Data[idx]) != raster.Boundary {
			continue
		}
		for _, f := range pc.classification.Faces[idx] {
			a, b, c := s.FaceVerts(f)
			if tHit, ok := geom.SegmentTriangle(p, dir, length, a, b, c); ok && tHit < best {
				best = tHit
				face = f
			}
		}
	}
	if face >= 0 {
		dist = best
	}
	return begInside, endInside, face, dist
}
