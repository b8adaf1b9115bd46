package image

import (
	"github.com/nibrary/nibrary/mt"
)

// Add sets img to be the elementwise sum a+b, parallel over voxels.
// a and b must share img's geometry.
func Add[T Number](img, a, b *Image[T]) {
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		img.Data[task.No] = a.Data[task.No] + b.Data[task.No]
	})
}

// Thresh zeroes every voxel at or below threshold and leaves the rest
// unchanged, parallel over voxels.
func Thresh[T Number](img *Image[T], threshold T) {
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		if img.Data[task.No] <= threshold {
			img.Data[task.No] = 0
		}
	})
}

// MinMax returns the minimum and maximum sample values, computed by
// reducing per-worker partials found in parallel.
func MinMax[T Number](img *Image[T]) (min, max T) {
	n := int(img.NumEl())
	if n == 0 {
		return 0, 0
	}
	workers := mt.MaxThreads()
	if workers > n {
		workers = n
	}
	mins := make([]T, workers)
	maxs := make([]T, workers)
	for w := range mins {
		mins[w] = img.Data[0]
		maxs[w] = img.Data[0]
	}
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		v := img.Data[task.No]
		if v < mins[task.ThreadID] {
			mins[task.ThreadID] = v
		}
		if v > maxs[task.ThreadID] {
			maxs[task.ThreadID] = v
		}
	}, mt.Options{Workers: workers})
	min, max = mins[0], maxs[0]
	for w := 1; w < workers; w++ {
		if mins[w] < min {
			min = mins[w]
		}
		if maxs[w] > max {
			max = maxs[w]
		}
	}
	return min, max
}

// NonZeroIndices returns the flat storage indices of every non-zero
// voxel. Collection into the shared slice is serialised through
// mt.PROC_MX, since appends are not commutative without ordering.
func NonZeroIndices[T Number](img *Image[T]) []int64 {
	var out []int64
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		if img.Data[task.No] != 0 {
			mt.PROC_MX.Lock()
			out = append(out, int64(task.No))
			mt.PROC_MX.Unlock()
		}
	})
	return out
}

// LabelIndices returns the flat storage indices of every voxel equal to
// label.
func LabelIndices[T Number](img *Image[T], label T) []int64 {
	var out []int64
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		if img.Data[task.No] == label {
			mt.PROC_MX.Lock()
			out = append(out, int64(task.No))
			mt.PROC_MX.Unlock()
		}
	})
	return out
}

// Pad returns a new image whose spatial extents grow by pad voxels on
// every side, preserving the affine by shifting the origin to the new
// corner; the added border is filled with fill.
func Pad[T Number](img *Image[T], pad int64, fill T) *Image[T] {
	out := CreateFromTemplate[T](img, false)
	out.ImgDims[0] += 2 * pad
	out.ImgDims[1] += 2 * pad
	out.ImgDims[2] += 2 * pad
	out.computeStrides()
	out.Data = make([]T, out.NumEl())
	for i := range out.Data {
		out.Data[i] = fill
	}
	out.Ijk2xyz.Wx = img.Ijk2xyz.Wx - float64(pad)*img.Ijk2xyz.Xx - float64(pad)*img.Ijk2xyz.Yx - float64(pad)*img.Ijk2xyz.Zx
	out.Ijk2xyz.Wy = img.Ijk2xyz.Wy - float64(pad)*img.Ijk2xyz.Xy - float64(pad)*img.Ijk2xyz.Yy - float64(pad)*img.Ijk2xyz.Zy
	out.Ijk2xyz.Wz = img.Ijk2xyz.Wz - float64(pad)*img.Ijk2xyz.Xz - float64(pad)*img.Ijk2xyz.Yz - float64(pad)*img.Ijk2xyz.Zz
	out.Xyz2ijk.InvAffine(&out.Ijk2xyz)

	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		idx := img.Ind2sub(int64(task.No))
		oidx := idx
		oidx[0] += pad
		oidx[1] += pad
		oidx[2] += pad
		*out.AtIdx(oidx) = img.Data[task.No]
	})
	return out
}

// GetImageSlice extracts the 2D slab at position index along spatial axis
// (0=x,1=y,2=z) of the fourth-dimension volume given by vol, returning a row-major
// width*height buffer plus its dimensions.
func GetImageSlice[T Number](img *Image[T], axis int, index int64, vol int64) (data []T, w, h int64) {
	switch axis {
	case 2:
		w, h = img.ImgDims[0], img.ImgDims[1]
		data = make([]T, w*h)
		mt.Run(int(w*h), func(task mt.Task, _ *mt.Barrier) {
			x := int64(task.No) % w
			y := int64(task.No) / w
			data[task.No] = *img.At(x, y, index, vol)
		})
	case 1:
		w, h = img.ImgDims[0], img.ImgDims[2]
		data = make([]T, w*h)
		mt.Run(int(w*h), func(task mt.Task, _ *mt.Barrier) {
			x := int64(task.No) % w
			z := int64(task.No) / w
			data[task.No] = *img.At(x, index, z, vol)
		})
	default:
		w, h = img.ImgDims[1], img.ImgDims[2]
		data = make([]T, w*h)
		mt.Run(int(w*h), func(task mt.Task, _ *mt.Barrier) {
			y := int64(task.No) % w
			z := int64(task.No) / w
			data[task.No] = *img.At(index, y, z, vol)
		})
	}
	return data, w, h
}
