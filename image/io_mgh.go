package image

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// Freesurfer MGH datatype codes (spec.md §6.1).
const (
	mghUint8   = 0
	mghInt32   = 1
	mghFloat32 = 3
	mghInt16   = 4
)

// mghHeader holds the leading fields of the fixed 284-byte big-endian MGH
// header preceding voxel data (the remaining bytes are zero padding),
// grounded on spec.md §6.1's field list.
type mghHeader struct {
	Version     int32
	Dims        [4]int32
	Type        int32
	Dof         int32
	GoodRAS     int16
	PixDims     [3]float32
	Cosines     [9]float32
	Center      [3]float32
}

// ReadMGH reads a Freesurfer MGH or gzipped MGZ volume into an Image[T].
// Non-spatial volumes (Dims[3]>1) are exposed along the image's fourth
// axis. The affine is reconstructed from the direction cosines and
// centre voxel the same way Freesurfer's vox2ras does.
func ReadMGH[T Number](path string) (*Image[T], error) {
	raw, err := readMGHBytes(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadMGH", path, err)
	}
	if len(raw) < 284 {
		return nil, nerr.New(nerr.FileError, "image.ReadMGH", "truncated header in "+path)
	}

	var hdr mghHeader
	if err := binary.Read(bytes.NewReader(raw[:90]), binary.BigEndian, &hdr); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "image.ReadMGH", "decoding header", err)
	}
	if hdr.Version != 1 {
		return nil, nerr.New(nerr.FileError, "image.ReadMGH", "unsupported MGH version in "+path)
	}

	var imgDims [NDIMS]int64
	var pixDims [NDIMS]float64
	for i := 0; i < 4; i++ {
		imgDims[i] = int64(hdr.Dims[i])
		if imgDims[i] < 1 {
			imgDims[i] = 1
		}
	}
	for i := 4; i < NDIMS; i++ {
		imgDims[i] = 1
	}
	pixDims[0], pixDims[1], pixDims[2] = float64(hdr.PixDims[0]), float64(hdr.PixDims[1]), float64(hdr.PixDims[2])
	for i := 3; i < NDIMS; i++ {
		pixDims[i] = 1
	}

	ijk2xyz := mghAffine(hdr)

	var indexOrder [NDIMS]int
	for i := range indexOrder {
		indexOrder[i] = i
	}

	elemSize := mghElemSize(hdr.Type)
	if elemSize == 0 {
		return nil, nerr.New(nerr.FileError, "image.ReadMGH", "unsupported MGH datatype")
	}

	img, cerr := Create[T](4, imgDims, pixDims, ijk2xyz, indexOrder, true)
	if cerr != nil {
		return nil, cerr
	}

	n := img.NumEl()
	body := raw[284:]
	if int64(len(body)) < n*int64(elemSize) {
		return nil, nerr.New(nerr.FileError, "image.ReadMGH", "truncated voxel data in "+path)
	}
	for i := int64(0); i < n; i++ {
		img.Data[i] = T(decodeMGHSample(body, i, hdr.Type))
	}
	return img, nil
}

func mghAffine(hdr mghHeader) lin.M4 {
	dx, dy, dz := float64(hdr.PixDims[0]), float64(hdr.PixDims[1]), float64(hdr.PixDims[2])
	// Cosines store Xr,Xa,Xs, Yr,Ya,Ys, Zr,Za,Zs: the world-space
	// direction each voxel axis points along.
	xCos := lin.V3{X: float64(hdr.Cosines[0]), Y: float64(hdr.Cosines[1]), Z: float64(hdr.Cosines[2])}
	yCos := lin.V3{X: float64(hdr.Cosines[3]), Y: float64(hdr.Cosines[4]), Z: float64(hdr.Cosines[5])}
	zCos := lin.V3{X: float64(hdr.Cosines[6]), Y: float64(hdr.Cosines[7]), Z: float64(hdr.Cosines[8])}
	centre := lin.V3{X: float64(hdr.Center[0]), Y: float64(hdr.Center[1]), Z: float64(hdr.Center[2])}

	var m lin.M4
	m.Xx, m.Xy, m.Xz = xCos.X*dx, xCos.Y*dx, xCos.Z*dx
	m.Yx, m.Yy, m.Yz = yCos.X*dy, yCos.Y*dy, yCos.Z*dy
	m.Zx, m.Zy, m.Zz = zCos.X*dz, zCos.Y*dz, zCos.Z*dz
	m.Ww = 1

	nc := [3]float64{float64(hdr.Dims[0]) / 2, float64(hdr.Dims[1]) / 2, float64(hdr.Dims[2]) / 2}
	origin := lin.V3{
		X: centre.X - (xCos.X*dx*nc[0] + yCos.X*dy*nc[1] + zCos.X*dz*nc[2]),
		Y: centre.Y - (xCos.Y*dx*nc[0] + yCos.Y*dy*nc[1] + zCos.Y*dz*nc[2]),
		Z: centre.Z - (xCos.Z*dx*nc[0] + yCos.Z*dy*nc[1] + zCos.Z*dz*nc[2]),
	}
	m.Wx, m.Wy, m.Wz = origin.X, origin.Y, origin.Z
	return m
}

func mghElemSize(t int32) int {
	switch t {
	case mghUint8:
		return 1
	case mghInt16:
		return 2
	case mghInt32, mghFloat32:
		return 4
	default:
		return 0
	}
}

func decodeMGHSample(body []byte, i int64, t int32) float64 {
	switch t {
	case mghUint8:
		return float64(body[i])
	case mghInt16:
		return float64(int16(binary.BigEndian.Uint16(body[i*2:])))
	case mghInt32:
		return float64(int32(binary.BigEndian.Uint32(body[i*4:])))
	default: // mghFloat32
		bits := binary.BigEndian.Uint32(body[i*4:])
		return float64(math.Float32frombits(bits))
	}
}

// WriteMGH writes img as an MGH (or, for a ".mgz" path, gzip-compressed
// MGZ) volume. Types other than the four MGH supports are up-cast to
// float32, per spec.md §6.1.
func WriteMGH[T Number](img *Image[T], path string) error {
	buf := &bytes.Buffer{}
	hdr := mghHeader{
		Version: 1,
		GoodRAS: 1,
	}
	for i := 0; i < 4; i++ {
		hdr.Dims[i] = int32(img.ImgDims[i])
	}
	hdr.Type = mghFloat32
	switch any(*new(T)).(type) {
	case uint8:
		hdr.Type = mghUint8
	case int16:
		hdr.Type = mghInt16
	case int32:
		hdr.Type = mghInt32
	}
	hdr.Dof = 1
	hdr.PixDims = [3]float32{float32(img.PixDims[0]), float32(img.PixDims[1]), float32(img.PixDims[2])}

	m := img.Ijk2xyz
	dx, dy, dz := img.PixDims[0], img.PixDims[1], img.PixDims[2]
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	if dz == 0 {
		dz = 1
	}
	hdr.Cosines = [9]float32{
		float32(m.Xx / dx), float32(m.Xy / dx), float32(m.Xz / dx),
		float32(m.Yx / dy), float32(m.Yy / dy), float32(m.Yz / dy),
		float32(m.Zx / dz), float32(m.Zy / dz), float32(m.Zz / dz),
	}
	nc := [3]float64{float64(img.ImgDims[0]) / 2, float64(img.ImgDims[1]) / 2, float64(img.ImgDims[2]) / 2}
	centre := lin.V3{
		X: m.Wx + m.Xx*nc[0] + m.Yx*nc[1] + m.Zx*nc[2],
		Y: m.Wy + m.Xy*nc[0] + m.Yy*nc[1] + m.Zy*nc[2],
		Z: m.Wz + m.Xz*nc[0] + m.Yz*nc[1] + m.Zz*nc[2],
	}
	hdr.Center = [3]float32{float32(centre.X), float32(centre.Y), float32(centre.Z)}

	binary.Write(buf, binary.BigEndian, &hdr)
	buf.Write(make([]byte, 284-buf.Len()))

	n := img.NumEl()
	for i := int64(0); i < n; i++ {
		switch hdr.Type {
		case mghUint8:
			buf.WriteByte(uint8(img.Data[i]))
		case mghInt16:
			binary.Write(buf, binary.BigEndian, int16(img.Data[i]))
		case mghInt32:
			binary.Write(buf, binary.BigEndian, int32(img.Data[i]))
		default:
			binary.Write(buf, binary.BigEndian, float32(img.Data[i]))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteMGH", path, err)
	}
	defer f.Close()
	var w io.Writer = f
	if strings.HasSuffix(path, ".mgz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteMGH", path, err)
	}
	return nil
}

func readMGHBytes(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".mgz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
