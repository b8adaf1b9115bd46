package seed

import (
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
)

// sphereSeeder draws uniformly inside a ball via rejection sampling in
// the circumscribing cube, per spec.md §4.8's sphere strategy.
type sphereSeeder struct {
	centre lin.V3
	radius float64
	pool   *mt.Pool
	b      budget
}

// NewSphere builds a Strategy sampling uniformly inside the ball of the
// given radius centred at centre.
func NewSphere(centre lin.V3, radius float64, count int, pool *mt.Pool) (Strategy, error) {
	if radius <= 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewSphere", "radius must be positive")
	}
	if pool == nil {
		pool = mt.Default()
	}
	return &sphereSeeder{centre: centre, radius: radius, pool: pool, b: budget{limit: int64(count)}}, nil
}

func (s *sphereSeeder) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	if st := s.b.take(); st != OK {
		return st
	}
	rng := s.pool.Rand(threadID)
	for {
		x := rng.Float64()*2 - 1
		y := rng.Float64()*2 - 1
		z := rng.Float64()*2 - 1
		if x*x+y*y+z*z <= 1 {
			*point = lin.V3{X: s.centre.X + x*s.radius, Y: s.centre.Y + y*s.radius, Z: s.centre.Z + z*s.radius}
			return OK
		}
	}
}
