package image

import "github.com/nibrary/nibrary/mt"

// neighbourhood offsets for 6/18/26-connectivity, grounded on
// original_source/src/image/image_morphological.h's precomputed offset
// table idea (there expressed as a flat int array; here as named
// connectivity sets selected at call time).
var conn6 = [][3]int64{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

var conn18 = append(append([][3]int64{}, conn6...),
	[3]int64{1, 1, 0}, [3]int64{1, -1, 0}, [3]int64{-1, 1, 0}, [3]int64{-1, -1, 0},
	[3]int64{1, 0, 1}, [3]int64{1, 0, -1}, [3]int64{-1, 0, 1}, [3]int64{-1, 0, -1},
	[3]int64{0, 1, 1}, [3]int64{0, 1, -1}, [3]int64{0, -1, 1}, [3]int64{0, -1, -1},
)

var conn26 = append(append([][3]int64{}, conn18...),
	[3]int64{1, 1, 1}, [3]int64{1, 1, -1}, [3]int64{1, -1, 1}, [3]int64{1, -1, -1},
	[3]int64{-1, 1, 1}, [3]int64{-1, 1, -1}, [3]int64{-1, -1, 1}, [3]int64{-1, -1, -1},
)

// Connectivity selects a voxel neighbourhood for dilate/erode.
type Connectivity int

const (
	Conn6 Connectivity = iota
	Conn18
	Conn26
)

// NeighbourOffsets returns the voxel-index offsets for the given
// connectivity, shared with packages outside image (e.g. edt's fast
// marching) that need the same neighbourhood definition.
func NeighbourOffsets(c Connectivity) [][3]int64 {
	switch c {
	case Conn18:
		return conn18
	case Conn26:
		return conn26
	default:
		return conn6
	}
}

func neighbourOffsets(c Connectivity) [][3]int64 { return NeighbourOffsets(c) }

// Dilate sets img to out such that any voxel with a nonzero neighbour
// (per the given connectivity) becomes nonzero, using the max over the
// neighbourhood as the fill value. Parallel over voxels.
func Dilate[T Number](img *Image[T], conn Connectivity) *Image[T] {
	out := CreateFromTemplate[T](img, true)
	offsets := neighbourOffsets(conn)
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		idx := img.Ind2sub(int64(task.No))
		i, j, k := idx[0], idx[1], idx[2]
		best := img.Data[task.No]
		for _, o := range offsets {
			ni, nj, nk := i+o[0], j+o[1], k+o[2]
			if !img.InBounds3(ni, nj, nk) {
				continue
			}
			v := *img.At(ni, nj, nk)
			if v > best {
				best = v
			}
		}
		out.Data[task.No] = best
	})
	return out
}

// Erode is the dual of Dilate: a voxel becomes the minimum over its
// neighbourhood. A voxel with any neighbour outside the image becomes 0.
func Erode[T Number](img *Image[T], conn Connectivity) *Image[T] {
	out := CreateFromTemplate[T](img, true)
	offsets := neighbourOffsets(conn)
	n := int(img.NumEl())
	mt.Run(n, func(task mt.Task, _ *mt.Barrier) {
		idx := img.Ind2sub(int64(task.No))
		i, j, k := idx[0], idx[1], idx[2]
		best := img.Data[task.No]
		for _, o := range offsets {
			ni, nj, nk := i+o[0], j+o[1], k+o[2]
			if !img.InBounds3(ni, nj, nk) {
				out.Data[task.No] = 0
				return
			}
			v := *img.At(ni, nj, nk)
			if v < best {
				best = v
			}
		}
		out.Data[task.No] = best
	})
	return out
}
