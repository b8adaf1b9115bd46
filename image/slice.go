package image

import (
	stdimage "image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// ToGray converts a 2D slice extracted by GetImageSlice into a
// standard library image.Gray, normalised against the observed min/max,
// so any Go image-processing consumer (PNG encoders, golang.org/x/image
// filters) can work directly with a rasterized slab without this module
// owning a visualisation pipeline.
func ToGray[T Number](data []T, w, h int64) *stdimage.Gray {
	out := stdimage.NewGray(stdimage.Rect(0, 0, int(w), int(h)))
	if len(data) == 0 {
		return out
	}
	min, max := data[0], data[0]
	for _, v := range data {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := float64(max) - float64(min)
	for y := int64(0); y < h; y++ {
		for x := int64(0); x < w; x++ {
			v := data[y*w+x]
			var g uint8
			if span > 0 {
				g = uint8(math.Round(255 * (float64(v) - float64(min)) / span))
			}
			out.SetGray(int(x), int(y), color.Gray{Y: g})
		}
	}
	return out
}

// ToNRGBA renders a 2D slice as a colour image using r,g,b channel
// slices of matching size, e.g. for a 3-vector field slab.
func ToNRGBA[T Number](r, g, b []T, w, h int64) *stdimage.NRGBA {
	out := stdimage.NewNRGBA(stdimage.Rect(0, 0, int(w), int(h)))
	n := int(w * h)
	for i := 0; i < n && i < len(r) && i < len(g) && i < len(b); i++ {
		x, y := i%int(w), i/int(w)
		out.Set(x, y, color.NRGBA{
			R: clampByte(r[i]), G: clampByte(g[i]), B: clampByte(b[i]), A: 255,
		})
	}
	return out
}

// Resize rescales a rendered slice image to width x height using
// Catmull-Rom resampling, for building quick-look thumbnails of a slab
// without re-sampling the source Image at a different spacing.
func Resize(src stdimage.Image, width, height int) *stdimage.NRGBA {
	dst := stdimage.NewNRGBA(stdimage.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func clampByte[T Number](v T) uint8 {
	f := float64(v)
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}
