package image

import (
	"encoding/binary"
	"os"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// ReadRaw reads a stream written by WriteRaw: ndim, then ImgDims,
// PixDims, Ijk2xyz and IndexOrder in declaration order, then the flat
// sample buffer, all in the given byte order. No magic, no datatype
// negotiation — the typed binary stream format of spec.md §6.1.
func ReadRaw[T Number](path string, order binary.ByteOrder) (*Image[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", path, err)
	}
	defer f.Close()

	var ndim int32
	if err := binary.Read(f, order, &ndim); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading ndim", err)
	}
	var imgDims [NDIMS]int64
	var pixDims [NDIMS]float64
	var ijk2xyz lin.M4
	var indexOrder [NDIMS]int32
	if err := binary.Read(f, order, &imgDims); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading dims", err)
	}
	if err := binary.Read(f, order, &pixDims); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading pixdims", err)
	}
	if err := binary.Read(f, order, &ijk2xyz); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading affine", err)
	}
	if err := binary.Read(f, order, &indexOrder); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading index order", err)
	}

	var order7 [NDIMS]int
	for i, v := range indexOrder {
		order7[i] = int(v)
	}

	img, cerr := Create[T](int(ndim), imgDims, pixDims, ijk2xyz, order7, true)
	if cerr != nil {
		return nil, cerr
	}
	if err := binary.Read(f, order, &img.Data); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadRaw", "reading samples: truncated stream", err)
	}
	return img, nil
}

// WriteRaw writes img in the format ReadRaw expects, in the given byte
// order.
func WriteRaw[T Number](img *Image[T], path string, order binary.ByteOrder) error {
	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteRaw", path, err)
	}
	defer f.Close()

	var indexOrder [NDIMS]int32
	for i, v := range img.IndexOrder {
		indexOrder[i] = int32(v)
	}

	ndim := 1
	for i := NDIMS - 1; i >= 0; i-- {
		if img.ImgDims[i] > 1 {
			ndim = i + 1
			break
		}
	}

	for _, v := range []any{
		int32(ndim), img.ImgDims, img.PixDims, img.Ijk2xyz, indexOrder, img.Data,
	} {
		if err := binary.Write(f, order, v); err != nil {
			return nerr.Wrap(nerr.FileError, "image.WriteRaw", path, err)
		}
	}
	return nil
}
