// Package image provides the typed voxel-grid container that is the
// geometry-image core's other half (the first being surface.Surface): a
// rectilinear sampled field with an affine voxel<->world mapping,
// configurable storage order, and interpolated world-space queries.
//
// Package image is grounded on original_source/src/image/image.cpp,
// generalised from the C++ template-per-type design (spec.md §9) into a
// single generic Image[T] parameterised over Number.
package image

import (
	"fmt"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// Number is the set of concrete element types this module instantiates
// Image over. Bool images are represented as Image[uint8] with values
// constrained to {0,1}: Go's generic arithmetic constraints cannot mix
// ~bool with the arithmetic operators interpolation needs.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// InterpMethod selects how Image.Sample resamples at a non-grid-aligned
// world point.
type InterpMethod int

const (
	NEAREST InterpMethod = iota
	LINEAR
	CUBIC
)

// NDIMS is the fixed number of dimensions every Image carries, the first
// three always spatial (spec.md §3.1).
const NDIMS = 7

// Image is a rectilinear sampled field of element type T with up to
// seven dimensions. See spec.md §3.1 for the full invariant list.
type Image[T Number] struct {
	ImgDims [NDIMS]int64   // extent along each axis (>=1 in unused trailing axes)
	PixDims [NDIMS]float64 // spacing along each axis

	Ijk2xyz lin.M4 // voxel-centre -> world affine
	Xyz2ijk lin.M4 // world -> voxel-centre affine, Xyz2ijk = inverse(Ijk2xyz)

	IndexOrder [NDIMS]int // permutation of axes defining storage stride order
	strides    [NDIMS]int64

	Data []T // contiguous buffer of length prod(ImgDims)

	DataScaler float64 // affine value rescale applied on read: v' = v*scaler + offset
	DataOffset float64

	InterpMethod InterpMethod
	OutsideVal   T // returned for out-of-bounds world queries
}

// Create builds an Image with the given dimensions, spacing and
// voxel->world affine, deriving the inverse affine and storage strides
// from indexOrder. allocate controls whether Data is allocated now.
// ndim must be in [1,7]; larger values are a Fatal precondition violation
// per spec.md §4.2.
func Create[T Number](ndim int, imgDims [NDIMS]int64, pixDims [NDIMS]float64, ijk2xyz lin.M4, indexOrder [NDIMS]int, allocate bool) (*Image[T], error) {
	if ndim < 1 || ndim > NDIMS {
		return nil, nerr.New(nerr.Fatal, "image.Create", fmt.Sprintf("ndim %d out of [1,%d]", ndim, NDIMS))
	}
	img := &Image[T]{
		ImgDims:      imgDims,
		PixDims:      pixDims,
		Ijk2xyz:      ijk2xyz,
		IndexOrder:   indexOrder,
		InterpMethod: LINEAR,
	}
	for i := ndim; i < NDIMS; i++ {
		if img.ImgDims[i] < 1 {
			img.ImgDims[i] = 1
		}
		if img.PixDims[i] <= 0 {
			img.PixDims[i] = 1
		}
	}

	var inv lin.M4
	if !inv.InvAffine(&ijk2xyz) {
		return nil, nerr.New(nerr.InvalidArgument, "image.Create", "ijk2xyz is not invertible")
	}
	img.Xyz2ijk = inv

	img.computeStrides()

	if allocate {
		n := img.NumEl()
		img.Data = make([]T, n)
	}
	return img, nil
}

// CreateFromTemplate clones the geometry (and, optionally, the data) of
// another image, regardless of element type.
func CreateFromTemplate[T Number, U Number](other *Image[U], copyData bool) *Image[T] {
	img := &Image[T]{
		ImgDims:      other.ImgDims,
		PixDims:      other.PixDims,
		Ijk2xyz:      other.Ijk2xyz,
		Xyz2ijk:      other.Xyz2ijk,
		IndexOrder:   other.IndexOrder,
		strides:      other.strides,
		InterpMethod: other.InterpMethod,
	}
	img.Data = make([]T, other.NumEl())
	if copyData {
		for i, v := range other.Data {
			img.Data[i] = T(v)
		}
	}
	return img
}

// CreateFromBoundingBox fits a grid to a world-space axis-aligned box,
// requesting either a voxel spacing (spacing>0, dims ignored) or a fixed
// voxel count along each spatial axis (spacing<=0). The digitised box is
// centred on the input box, per spec.md §4.2.
func CreateFromBoundingBox[T Number](bbMin, bbMax lin.V3, spacing float64, dims [3]int64, allocate bool) (*Image[T], error) {
	extent := lin.V3{X: bbMax.X - bbMin.X, Y: bbMax.Y - bbMin.Y, Z: bbMax.Z - bbMin.Z}
	if extent.X < 0 || extent.Y < 0 || extent.Z < 0 {
		return nil, nerr.New(nerr.InvalidArgument, "image.CreateFromBoundingBox", "bbMax must be >= bbMin componentwise")
	}

	var imgDims [NDIMS]int64
	var pixDims [NDIMS]float64
	if spacing > 0 {
		imgDims[0] = int64(extent.X/spacing) + 1
		imgDims[1] = int64(extent.Y/spacing) + 1
		imgDims[2] = int64(extent.Z/spacing) + 1
		pixDims[0], pixDims[1], pixDims[2] = spacing, spacing, spacing
	} else {
		imgDims[0], imgDims[1], imgDims[2] = dims[0], dims[1], dims[2]
		if imgDims[0] < 1 || imgDims[1] < 1 || imgDims[2] < 1 {
			return nil, nerr.New(nerr.InvalidArgument, "image.CreateFromBoundingBox", "dims must be positive when spacing<=0")
		}
		pixDims[0] = extent.X / float64(imgDims[0])
		pixDims[1] = extent.Y / float64(imgDims[1])
		pixDims[2] = extent.Z / float64(imgDims[2])
		for _, p := range pixDims[:3] {
			if p <= 0 {
				return nil, nerr.New(nerr.InvalidArgument, "image.CreateFromBoundingBox", "degenerate extent along some axis")
			}
		}
	}

	// centre the digitised grid on the input box: grid covers
	// [centre - n*spacing/2, centre + n*spacing/2] along each axis.
	centre := lin.V3{X: (bbMin.X + bbMax.X) / 2, Y: (bbMin.Y + bbMax.Y) / 2, Z: (bbMin.Z + bbMax.Z) / 2}
	origin := lin.V3{
		X: centre.X - float64(imgDims[0]-1)*pixDims[0]/2,
		Y: centre.Y - float64(imgDims[1]-1)*pixDims[1]/2,
		Z: centre.Z - float64(imgDims[2]-1)*pixDims[2]/2,
	}

	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = pixDims[0], pixDims[1], pixDims[2], 1
	ijk2xyz.Wx, ijk2xyz.Wy, ijk2xyz.Wz = origin.X, origin.Y, origin.Z

	var indexOrder [NDIMS]int
	for i := range indexOrder {
		indexOrder[i] = i
	}
	return Create[T](3, imgDims, pixDims, ijk2xyz, indexOrder, allocate)
}

func (img *Image[T]) computeStrides() {
	// stride[k] = product of extents of axes preceding axis k in IndexOrder.
	order := img.IndexOrder
	extentAt := func(axis int) int64 { return img.ImgDims[axis] }

	// position[axis] = how many axes precede `axis` in storage order.
	position := make([]int, NDIMS)
	for pos, axis := range order {
		position[axis] = pos
	}
	for axis := 0; axis < NDIMS; axis++ {
		stride := int64(1)
		for _, other := range order {
			if position[other] < position[axis] {
				stride *= extentAt(other)
			}
		}
		img.strides[axis] = stride
	}
}

// NumEl returns the total element count, the product of ImgDims.
func (img *Image[T]) NumEl() int64 {
	n := int64(1)
	for _, d := range img.ImgDims {
		n *= d
	}
	return n
}

// Sub2ind converts a 7D logical voxel index to a flat storage index
// using the image's configured IndexOrder.
func (img *Image[T]) Sub2ind(idx [NDIMS]int64) int64 {
	var flat int64
	for axis := 0; axis < NDIMS; axis++ {
		flat += idx[axis] * img.strides[axis]
	}
	return flat
}

// Ind2sub is the inverse of Sub2ind.
func (img *Image[T]) Ind2sub(flat int64) [NDIMS]int64 {
	var idx [NDIMS]int64
	// decode axes from the slowest-varying (last in IndexOrder) down.
	order := img.IndexOrder
	rem := flat
	for i := NDIMS - 1; i >= 0; i-- {
		axis := order[i]
		idx[axis] = rem / img.strides[axis]
		rem -= idx[axis] * img.strides[axis]
	}
	return idx
}

// InBounds3 reports whether spatial voxel index (i,j,k) is within
// [0,ImgDims[0])x[0,ImgDims[1])x[0,ImgDims[2]).
func (img *Image[T]) InBounds3(i, j, k int64) bool {
	return i >= 0 && i < img.ImgDims[0] &&
		j >= 0 && j < img.ImgDims[1] &&
		k >= 0 && k < img.ImgDims[2]
}

// At returns a pointer to the sample at spatial voxel (i,j,k) and
// trailing-dimension index v (defaulting the remaining axes to 0). The
// caller must ensure the index is in bounds.
func (img *Image[T]) At(i, j, k int64, v ...int64) *T {
	idx := [NDIMS]int64{i, j, k}
	for axis, val := range v {
		idx[3+axis] = val
	}
	return &img.Data[img.Sub2ind(idx)]
}

// AtIdx returns a pointer to the sample at a full 7D logical index.
func (img *Image[T]) AtIdx(idx [NDIMS]int64) *T {
	return &img.Data[img.Sub2ind(idx)]
}

// Vox2World converts a voxel-centre coordinate to world coordinates.
func (img *Image[T]) Vox2World(ijk lin.V3) lin.V3 {
	return *img.Ijk2xyz.AppPoint(&ijk)
}

// World2Vox converts a world coordinate to voxel-centre coordinates.
func (img *Image[T]) World2Vox(xyz lin.V3) lin.V3 {
	return *img.Xyz2ijk.AppPoint(&xyz)
}
