package seed

import (
	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
)

// pvfSeeder draws uniformly over voxels with a positive value, then
// accepts the draw with probability value/max, per spec.md §4.8's PVF
// rejection-sampling strategy.
type pvfSeeder[T image.Number] struct {
	img    *image.Image[T]
	voxels []int64
	max    float64
	pool   *mt.Pool
	b      budget
}

// NewImagePVF builds a rejection-sampling Strategy over img's positive
// voxels, weighted by value relative to the image maximum.
func NewImagePVF[T image.Number](img *image.Image[T], count int, pool *mt.Pool) (Strategy, error) {
	n := img.NumEl()
	voxels := make([]int64, 0, n)
	max := 0.0
	for i := int64(0); i < n; i++ {
		v := float64(img.Data[i])
		if v > 0 {
			voxels = append(voxels, i)
			if v > max {
				max = v
			}
		}
	}
	if len(voxels) == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewImagePVF", "image has no positive voxels")
	}
	if pool == nil {
		pool = mt.Default()
	}
	return &pvfSeeder[T]{img: img, voxels: voxels, max: max, pool: pool, b: budget{limit: int64(count)}}, nil
}

func (s *pvfSeeder[T]) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	if st := s.b.take(); st != OK {
		return st
	}
	rng := s.pool.Rand(threadID)
	for {
		idx := s.voxels[rng.Intn(len(s.voxels))]
		v := float64(s.img.Data[idx])
		if rng.Float64() <= v/s.max {
			sub := s.img.Ind2sub(idx)
			*point = jitterVoxel(s.img, sub, rng)
			return OK
		}
	}
}
