package seed

import (
	"math/rand"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
)

// maskSeeder draws uniformly over voxels with a nonzero label, then
// uniformly inside the chosen voxel, per spec.md §4.8's image-mask
// strategy.
type maskSeeder[T image.Number] struct {
	img    *image.Image[T]
	voxels []int64
	pool   *mt.Pool
	b      budget
}

// NewImageMask builds a Strategy over img's nonzero voxels. count<=0
// means unlimited (caller stops by other means).
func NewImageMask[T image.Number](img *image.Image[T], count int, pool *mt.Pool) (Strategy, error) {
	n := img.NumEl()
	voxels := make([]int64, 0, n)
	for i := int64(0); i < n; i++ {
		if img.Data[i] != 0 {
			voxels = append(voxels, i)
		}
	}
	if len(voxels) == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "seed.NewImageMask", "mask has no nonzero voxels")
	}
	if pool == nil {
		pool = mt.Default()
	}
	return &maskSeeder[T]{img: img, voxels: voxels, pool: pool, b: budget{limit: int64(count)}}, nil
}

func (s *maskSeeder[T]) GetSeed(point *lin.V3, dir *lin.V3, threadID int) Status {
	if st := s.b.take(); st != OK {
		return st
	}
	rng := s.pool.Rand(threadID)
	idx := s.voxels[rng.Intn(len(s.voxels))]
	sub := s.img.Ind2sub(idx)
	*point = jitterVoxel(s.img, sub, rng)
	return OK
}

// jitterVoxel places a uniform random point inside the voxel at sub,
// mapped through the image's affine into world space.
func jitterVoxel[T image.Number](img *image.Image[T], sub [image.NDIMS]int64, rng *rand.Rand) lin.V3 {
	ijk := lin.V3{
		X: float64(sub[0]) + rng.Float64() - 0.5,
		Y: float64(sub[1]) + rng.Float64() - 0.5,
		Z: float64(sub[2]) + rng.Float64() - 0.5,
	}
	return img.Vox2World(ijk)
}
