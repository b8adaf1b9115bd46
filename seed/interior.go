package seed

import (
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
	"github.com/nibrary/nibrary/surface"
)

// interiorSeeder draws uniformly over a surface's bounding box, rejecting
// draws outside the surface's point-check mask, per spec.md §4.8's
// surface-interior strategy. PointInsideFast's boundary-thickness policy
// already rejects points exactly on the boundary.
type interiorSeeder struct {
	surf     *surface.Surface
	bbMin    lin.V3
	bbMax    lin.V3
	pool     *mt.Pool
	b        budget
	maxTries int
}

// NewSurfaceInterior builds a Strategy sampling the interior of surf.
// surf must already have EnablePointCheck called (or PointInsideFast
// falls back to the slower AABB winding-number query).
func NewSurfaceInterior(surf *surface.Surface, count int, pool *mt.Pool) (Strategy, error) {
	if surf.NV() == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewSurfaceInterior", "surface has no vertices")
	}
	bbMin, bbMax := surf.Vertices[0], surf.Vertices[0]
	for _, v := range surf.Vertices {
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
	if pool == nil {
		pool = mt.Default()
	}
	return &interiorSeeder{surf: surf, bbMin: bbMin, bbMax: bbMax, pool: pool, b: budget{limit: int64(count)}, maxTries: 10000}, nil
}

func (s *interiorSeeder) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	if st := s.b.take(); st != OK {
		return st
	}
	rng := s.pool.Rand(threadID)
	for try := 0; try < s.maxTries; try++ {
		p := lin.V3{
			X: s.bbMin.X + rng.Float64()*(s.bbMax.X-s.bbMin.X),
			Y: s.bbMin.Y + rng.Float64()*(s.bbMax.Y-s.bbMin.Y),
			Z: s.bbMin.Z + rng.Float64()*(s.bbMax.Z-s.bbMin.Z),
		}
		if s.surf.PointInsideFast(p) {
			*point = p
			return OK
		}
	}
	return Failed
}
