// Package fod specialises image.Image[float32] to a 4D "spherical
// function per voxel" layout: either SH coefficients or samples on a
// fixed sphere.Discretization, with a voxel-lattice sphere-index
// precomputation for fast direction lookup.
//
// Grounded on original_source/src/image/sf_image.cpp (representation,
// smoothing over nonzero voxels) and
// original_source/src/dMRI/imageTypes/fod_image_discretizer.cpp (the
// cubic-shell index grid, here SphereIndexGrid).
package fod

import (
	"fmt"
	"math"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/mt"
	"github.com/nibrary/nibrary/nerr"
	"github.com/nibrary/nibrary/sphere"
)

// Representation selects whether the fourth dimension holds SH
// coefficients or sample values on Disc's directions.
type Representation int

const (
	Coefficients Representation = iota
	Samples
)

// Image pairs a 4D image.Image[float32] with the sphere machinery needed
// to interpret its fourth dimension, per spec.md §2's "SF/FOD image"
// module.
type Image struct {
	*image.Image[float32]

	Representation Representation
	EvenOnly       bool

	Basis *sphere.Basis         // set when Representation == Coefficients
	Disc  *sphere.Discretization // set when Representation == Samples
	Grid  *SphereIndexGrid       // optional precomputed lookup, built on demand
}

// NewCoefficientImage wraps img (ImgDims[3] must equal the basis
// coefficient count) as a coefficient-domain spherical-function image.
func NewCoefficientImage(img *image.Image[float32], order int, evenOnly bool) (*Image, error) {
	basis := sphere.NewBasis(order, evenOnly)
	if int(img.ImgDims[3]) != basis.CoeffCount() {
		return nil, nerr.New(nerr.InvalidArgument, "fod.NewCoefficientImage",
			fmt.Sprintf("image has %d values per voxel, order %d (evenOnly=%v) basis needs %d",
				img.ImgDims[3], order, evenOnly, basis.CoeffCount()))
	}
	return &Image{Image: img, Representation: Coefficients, EvenOnly: evenOnly, Basis: basis}, nil
}

// NewSampleImageFromDiscretization wraps img as a sample-domain
// spherical-function image over an already-built discretization.
func NewSampleImageFromDiscretization(img *image.Image[float32], disc *sphere.Discretization) (*Image, error) {
	if int(img.ImgDims[3]) != len(disc.Directions) {
		return nil, nerr.New(nerr.InvalidArgument, "fod.NewSampleImageFromDiscretization",
			fmt.Sprintf("image has %d values per voxel, discretization has %d directions",
				img.ImgDims[3], len(disc.Directions)))
	}
	return &Image{Image: img, Representation: Samples, EvenOnly: disc.Even, Disc: disc}, nil
}

// ToSF converts a Coefficients image to a Samples image over disc,
// evaluating the SH basis at every direction per non-zero voxel
// (original_source's sh2sf convention applied voxel-parallel, clamped
// to non-negative since FODs/ODFs are non-negative spherical functions).
func (im *Image) ToSF(disc *sphere.Discretization) (*Image, error) {
	if im.Representation != Coefficients {
		return nil, nerr.New(nerr.InvalidArgument, "fod.Image.ToSF", "image is not in coefficient representation")
	}
	out, err := reshapeFourthDim(im.Image, int64(len(disc.Directions)))
	if err != nil {
		return nil, err
	}

	nx, ny, nz := im.ImgDims[0], im.ImgDims[1], im.ImgDims[2]
	mt.Run(int(nx*ny*nz), func(task mt.Task, _ *mt.Barrier) {
		n := int64(task.No)
		i, j, k := n%nx, (n/nx)%ny, n/(nx*ny)
		sh := voxelCoeffs(im.Image, i, j, k, im.Basis.CoeffCount())
		if allZero(sh) {
			return
		}
		for d, dir := range disc.Directions {
			v := im.Basis.SH2SF(sh, dir)
			if v < 0 {
				v = 0
			}
			idx := out.Sub2ind([image.NDIMS]int64{i, j, k, int64(d), 0, 0, 0})
			out.Data[idx] = float32(v)
		}
	})

	return NewSampleImageFromDiscretization(out, disc)
}

// ToSH converts a Samples image back to a Coefficients image by fitting
// basis against the samples at each non-zero voxel (original_source's
// sf2sh convention).
func (im *Image) ToSH(order int) (*Image, error) {
	if im.Representation != Samples {
		return nil, nerr.New(nerr.InvalidArgument, "fod.Image.ToSH", "image is not in sample representation")
	}
	basis := sphere.NewBasis(order, im.EvenOnly)
	out, err := reshapeFourthDim(im.Image, int64(basis.CoeffCount()))
	if err != nil {
		return nil, err
	}

	nx, ny, nz := im.ImgDims[0], im.ImgDims[1], im.ImgDims[2]
	nDirs := len(im.Disc.Directions)
	mt.Run(int(nx*ny*nz), func(task mt.Task, _ *mt.Barrier) {
		n := int64(task.No)
		i, j, k := n%nx, (n/nx)%ny, n/(nx*ny)
		sf := voxelCoeffs(im.Image, i, j, k, nDirs)
		if allZero(sf) {
			return
		}
		sh := basis.SF2SH(sf, im.Disc.Directions)
		for c, v := range sh {
			idx := out.Sub2ind([image.NDIMS]int64{i, j, k, int64(c), 0, 0, 0})
			out.Data[idx] = float32(v)
		}
	})

	return NewCoefficientImage(out, order, im.EvenOnly)
}

// Smooth averages sample values over neighbouring directions within
// angle (degrees) of each other, restricted to non-zero voxels, per
// original_source/src/image/sf_image.cpp's smooth(). Only valid for
// Samples images.
func (im *Image) Smooth(angleDeg float64) error {
	if im.Representation != Samples {
		return nerr.New(nerr.InvalidArgument, "fod.Image.Smooth", "image is not in sample representation")
	}
	if angleDeg <= 0 {
		return nil
	}
	threshold := angleToChord2(angleDeg)

	nx, ny, nz := im.ImgDims[0], im.ImgDims[1], im.ImgDims[2]
	nDirs := int64(len(im.Disc.Directions))
	numel := im.NumEl()
	smoothed := make([]float32, numel)

	mt.Run(int(nx*ny*nz), func(task mt.Task, _ *mt.Barrier) {
		n := int64(task.No)
		i, j, k := n%nx, (n/nx)%ny, n/(nx*ny)
		sf := voxelCoeffs(im.Image, i, j, k, int(nDirs))
		if allZero(sf) {
			return
		}
		for d := int64(0); d < nDirs; d++ {
			neighbors := im.Disc.Neighbors(im.Disc.Directions[d], threshold)
			if len(neighbors) == 0 {
				continue
			}
			var sum float32
			for _, u := range neighbors {
				sum += sf[u]
			}
			idx := im.Sub2ind([image.NDIMS]int64{i, j, k, d, 0, 0, 0})
			smoothed[idx] = sum / float32(len(neighbors))
		}
	})

	im.Data = smoothed
	return nil
}

// reshapeFourthDim builds a new 4D image sharing src's spatial geometry
// (dims, spacing, affine, storage order) but with newCount values per
// voxel, since the fourth axis's extent participates in the storage
// strides and cannot simply be overwritten on a cloned image.
func reshapeFourthDim(src *image.Image[float32], newCount int64) (*image.Image[float32], error) {
	imgDims := src.ImgDims
	imgDims[3] = newCount
	return image.Create[float32](4, imgDims, src.PixDims, src.Ijk2xyz, src.IndexOrder, true)
}

func voxelCoeffs(img *image.Image[float32], i, j, k int64, n int) []float64 {
	out := make([]float64, n)
	for c := 0; c < n; c++ {
		idx := img.Sub2ind([image.NDIMS]int64{i, j, k, int64(c), 0, 0, 0})
		out[c] = float64(img.Data[idx])
	}
	return out
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// angleToChord2 converts an angular threshold (degrees) into the
// squared-chordal-distance threshold sphere.Discretization.Neighbors
// expects, via the law of cosines on the unit sphere: chord^2 =
// 2(1-cos(angle)).
func angleToChord2(angleDeg float64) float64 {
	rad := angleDeg * math.Pi / 180
	return 2 * (1 - math.Cos(rad))
}
