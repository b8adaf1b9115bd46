package seed

import (
	"math"
	"sort"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
	"github.com/nibrary/nibrary/surface"
)

// areaSeeder draws a face proportional to its (optionally weighted) area,
// then a uniform barycentric point on it, per spec.md §4.8's surface
// strategy.
type areaSeeder struct {
	surf       *surface.Surface
	cumWeight  []float64
	total      float64
	emitNormal bool
	pool       *mt.Pool
	b          budget
}

// NewSurface builds a face-area-weighted Strategy over surf. density, if
// non-nil, must have one entry per face and multiplies that face's area
// before normalisation. emitNormal requests the barycentric-interpolated
// vertex normal at the sampled point as the seed direction.
func NewSurface(surf *surface.Surface, density []float64, emitNormal bool, count int, pool *mt.Pool) (Strategy, error) {
	nf := surf.NF()
	if nf == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewSurface", "surface has no faces")
	}
	if density != nil && len(density) != nf {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewSurface", "density length must match face count")
	}
	cum := make([]float64, nf)
	total := 0.0
	for f := 0; f < nf; f++ {
		w := surf.FaceArea(f)
		if density != nil {
			w *= density[f]
		}
		total += w
		cum[f] = total
	}
	if total <= 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewSurface", "total weighted area is zero")
	}
	if pool == nil {
		pool = mt.Default()
	}
	return &areaSeeder{surf: surf, cumWeight: cum, total: total, emitNormal: emitNormal, pool: pool, b: budget{limit: int64(count)}}, nil
}

func (s *areaSeeder) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	if st := s.b.take(); st != OK {
		return st
	}
	rng := s.pool.Rand(threadID)
	target := rng.Float64() * s.total
	f := sort.Search(len(s.cumWeight), func(i int) bool { return s.cumWeight[i] >= target })
	if f >= len(s.cumWeight) {
		f = len(s.cumWeight) - 1
	}

	a, b, c := s.surf.FaceVerts(f)
	u, v := rng.Float64(), rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	w := 1 - u - v
	*point = lin.V3{
		X: w*a.X + u*b.X + v*c.X,
		Y: w*a.Y + u*b.Y + v*c.Y,
		Z: w*a.Z + u*b.Z + v*c.Z,
	}

	if s.emitNormal && dir != nil {
		tri := s.surf.Faces[f]
		na, nb, nc := s.surf.VertexNormal(tri[0]), s.surf.VertexNormal(tri[1]), s.surf.VertexNormal(tri[2])
		n := lin.V3{
			X: w*na.X + u*nb.X + v*nc.X,
			Y: w*na.Y + u*nb.Y + v*nc.Y,
			Z: w*na.Z + u*nb.Z + v*nc.Z,
		}
		if l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z); l > 0 {
			n.X, n.Y, n.Z = n.X/l, n.Y/l, n.Z/l
		}
		*dir = n
	}
	return OK
}
