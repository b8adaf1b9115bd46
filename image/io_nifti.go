package image

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// niftiHeader mirrors the 348-byte NIfTI-1 on-disk header, grounded on
// the nifti1.h layout (see other_examples' nifti1 readers for the same
// field set). The leading legacy fields and glmax/glmin are unnamed and
// read into padding so offsets stay correct.
type niftiHeader struct {
	SizeOfHdr  int32
	_          [35]byte // data_type, db_name, extents, session_error, regular
	DimInfo    int8
	Dim        [8]int16
	IntentP1   float32
	IntentP2   float32
	IntentP3   float32
	IntentCode int16
	DataType   int16
	BitPix     int16
	SliceStart int16
	PixDim     [8]float32
	VoxOffset  float32
	SclSlope   float32
	SclInter   float32
	SliceEnd   int16
	SliceCode  int8
	XYZTUnits  int8
	CalMax     float32
	CalMin     float32
	SliceDur   float32
	TOffset    float32
	_          [8]byte // glmax, glmin
	Descrip    [80]byte
	AuxFile    [24]byte
	QFormCode  int16
	SFormCode  int16
	QuaternB   float32
	QuaternC   float32
	QuaternD   float32
	QOffsetX   float32
	QOffsetY   float32
	QOffsetZ   float32
	SRowX      [4]float32
	SRowY      [4]float32
	SRowZ      [4]float32
	IntentName [16]byte
	Magic      [4]byte
}

// NIfTI-1/-2 datatype codes, mapped 1:1 to element types (spec.md §6.1).
// Complex and RGB codes are intentionally absent: refused on read.
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
	dtInt64   = 1024
	dtUint64  = 1280
)

// ReadNifti1 loads a NIfTI-1 (.nii or .nii.gz) volume into an Image[T].
// scl_slope/scl_inter are applied before casting into T. sform is
// preferred over qform when sform_code>0, per spec.md §6.1. Descrip is
// decoded as Latin-1 (the de-facto charset of legacy NIfTI headers) and
// returned alongside the image.
func ReadNifti1[T Number](path string) (*Image[T], string, error) {
	raw, err := readMaybeGzip(path)
	if err != nil {
		return nil, "", nerr.Wrap(nerr.FileError, "image.ReadNifti1", "opening "+path, err)
	}
	if len(raw) < 348 {
		return nil, "", nerr.New(nerr.FileError, "image.ReadNifti1", "truncated header in "+path)
	}

	if m2 := string(raw[4:7]); m2 == "n+2" || m2 == "ni2" {
		return nil, "", nerr.New(nerr.FileError, "image.ReadNifti1", "NIfTI-2 is not supported: "+path)
	}
	var hdr niftiHeader
	if err := binary.Read(bytes.NewReader(raw[:348]), binary.LittleEndian, &hdr); err != nil {
		return nil, "", nerr.Wrap(nerr.FileError, "image.ReadNifti1", "decoding header", err)
	}
	magic := string(bytes.TrimRight(hdr.Magic[:], "\x00"))
	if magic != "n+1" && magic != "ni1" {
		return nil, "", nerr.New(nerr.FileError, "image.ReadNifti1", "bad magic in "+path)
	}

	descrip, err := charmap.ISO8859_1.NewDecoder().String(string(bytes.TrimRight(hdr.Descrip[:], "\x00")))
	if err != nil {
		descrip = string(bytes.TrimRight(hdr.Descrip[:], "\x00"))
	}

	ndim := int(hdr.Dim[0])
	if ndim < 1 || ndim > NDIMS {
		return nil, "", nerr.New(nerr.FileError, "image.ReadNifti1", "dim[0] out of range")
	}

	var imgDims [NDIMS]int64
	var pixDims [NDIMS]float64
	for i := 0; i < NDIMS; i++ {
		imgDims[i] = int64(hdr.Dim[i+1])
		if imgDims[i] < 1 {
			imgDims[i] = 1
		}
		pixDims[i] = float64(hdr.PixDim[i+1])
		if pixDims[i] <= 0 {
			pixDims[i] = 1
		}
	}

	ijk2xyz := niftiAffine(hdr)

	var indexOrder [NDIMS]int
	for i := range indexOrder {
		indexOrder[i] = i
	}

	elemSize, err := niftiElemSize(hdr.DataType)
	if err != nil {
		return nil, "", nerr.Wrap(nerr.FileError, "image.ReadNifti1", path, err)
	}

	img, cerr := Create[T](ndim, imgDims, pixDims, ijk2xyz, indexOrder, true)
	if cerr != nil {
		return nil, "", cerr
	}

	n := img.NumEl()
	voxOffset := int64(hdr.VoxOffset)
	if voxOffset < 352 {
		voxOffset = 352
	}
	if int64(len(raw)) < voxOffset+n*int64(elemSize) {
		return nil, "", nerr.New(nerr.FileError, "image.ReadNifti1", "truncated voxel data in "+path)
	}
	body := raw[voxOffset:]

	slope, inter := float64(hdr.SclSlope), float64(hdr.SclInter)
	if slope == 0 {
		slope = 1
	}
	for i := int64(0); i < n; i++ {
		v, err := decodeNiftiSample(body, i, hdr.DataType)
		if err != nil {
			return nil, "", nerr.Wrap(nerr.FileError, "image.ReadNifti1", path, err)
		}
		img.Data[i] = T(v*slope + inter)
	}
	return img, descrip, nil
}

func niftiAffine(hdr niftiHeader) lin.M4 {
	var m lin.M4
	if hdr.SFormCode > 0 {
		m.Xx, m.Yx, m.Zx, m.Wx = float64(hdr.SRowX[0]), float64(hdr.SRowX[1]), float64(hdr.SRowX[2]), float64(hdr.SRowX[3])
		m.Xy, m.Yy, m.Zy, m.Wy = float64(hdr.SRowY[0]), float64(hdr.SRowY[1]), float64(hdr.SRowY[2]), float64(hdr.SRowY[3])
		m.Xz, m.Yz, m.Zz, m.Wz = float64(hdr.SRowZ[0]), float64(hdr.SRowZ[1]), float64(hdr.SRowZ[2]), float64(hdr.SRowZ[3])
		m.Ww = 1
		return m
	}
	return qformToAffine(hdr)
}

// qformToAffine builds ijk2xyz from the quaternion qform parameters,
// following the standard NIfTI reconstruction: b,c,d give the vector
// part, a is recovered so a^2+b^2+c^2+d^2=1, qfac flips the third
// column's sign for a left-handed voxel grid.
func qformToAffine(hdr niftiHeader) lin.M4 {
	b, c, d := float64(hdr.QuaternB), float64(hdr.QuaternC), float64(hdr.QuaternD)
	a2 := 1 - b*b - c*c - d*d
	a := 0.0
	if a2 > 1e-7 {
		a = math.Sqrt(a2)
	}
	q := lin.Q{W: a, X: b, Y: c, Z: d}
	var rot lin.M3
	rot.SetQ(&q)

	qfac := float64(hdr.PixDim[0])
	if qfac != -1 {
		qfac = 1
	}
	dx, dy, dz := float64(hdr.PixDim[1]), float64(hdr.PixDim[2]), float64(hdr.PixDim[3])

	var m lin.M4
	m.Xx, m.Xy, m.Xz = rot.Xx*dx, rot.Yx*dx, rot.Zx*dx
	m.Yx, m.Yy, m.Yz = rot.Xy*dy, rot.Yy*dy, rot.Zy*dy
	m.Zx, m.Zy, m.Zz = rot.Xz*dz*qfac, rot.Yz*dz*qfac, rot.Zz*dz*qfac
	m.Wx, m.Wy, m.Wz = float64(hdr.QOffsetX), float64(hdr.QOffsetY), float64(hdr.QOffsetZ)
	m.Ww = 1
	return m
}

func niftiElemSize(dt int16) (int, error) {
	switch dt {
	case dtUint8, dtInt8:
		return 1, nil
	case dtInt16, dtUint16:
		return 2, nil
	case dtInt32, dtUint32, dtFloat32:
		return 4, nil
	case dtInt64, dtUint64, dtFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported or complex datatype code %d", dt)
	}
}

func decodeNiftiSample(body []byte, i int64, dt int16) (float64, error) {
	switch dt {
	case dtUint8:
		return float64(body[i]), nil
	case dtInt8:
		return float64(int8(body[i])), nil
	case dtInt16:
		return float64(int16(binary.LittleEndian.Uint16(body[i*2:]))), nil
	case dtUint16:
		return float64(binary.LittleEndian.Uint16(body[i*2:])), nil
	case dtInt32:
		return float64(int32(binary.LittleEndian.Uint32(body[i*4:]))), nil
	case dtUint32:
		return float64(binary.LittleEndian.Uint32(body[i*4:])), nil
	case dtFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(body[i*4:]))), nil
	case dtInt64:
		return float64(int64(binary.LittleEndian.Uint64(body[i*8:]))), nil
	case dtUint64:
		return float64(binary.LittleEndian.Uint64(body[i*8:])), nil
	case dtFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(body[i*8:])), nil
	default:
		return 0, fmt.Errorf("unsupported datatype code %d", dt)
	}
}

// WriteNifti1 writes img as a NIfTI-1 single-file volume (.nii), with
// sform and qform set identically from img.Ijk2xyz (spec.md §6.1).
func WriteNifti1[T Number](img *Image[T], path string, descrip string) error {
	var hdr niftiHeader
	hdr.SizeOfHdr = 348
	hdr.Dim[0] = 7
	for i := 0; i < NDIMS; i++ {
		hdr.Dim[i+1] = int16(img.ImgDims[i])
		hdr.PixDim[i+1] = float32(img.PixDims[i])
	}
	hdr.DataType = niftiCodeFor(*new(T))
	elemSize, err := niftiElemSize(hdr.DataType)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteNifti1", path, err)
	}
	hdr.BitPix = int16(elemSize * 8)
	hdr.VoxOffset = 352
	hdr.SclSlope = 1
	hdr.SFormCode = 1
	hdr.QFormCode = 1
	m := img.Ijk2xyz
	hdr.SRowX = [4]float32{float32(m.Xx), float32(m.Yx), float32(m.Zx), float32(m.Wx)}
	hdr.SRowY = [4]float32{float32(m.Xy), float32(m.Yy), float32(m.Zy), float32(m.Wy)}
	hdr.SRowZ = [4]float32{float32(m.Xz), float32(m.Yz), float32(m.Zz), float32(m.Wz)}
	// qform: the inverse of qformToAffine, with qfac = -1 in pixdim[0] for
	// a left-handed grid and the quaternion sign chosen so that a >= 0.
	var rot lin.M3
	rot.Xx, rot.Yx, rot.Zx = m.Xx/img.PixDims[0], m.Xy/img.PixDims[0], m.Xz/img.PixDims[0]
	rot.Xy, rot.Yy, rot.Zy = m.Yx/img.PixDims[1], m.Yy/img.PixDims[1], m.Yz/img.PixDims[1]
	rot.Xz, rot.Yz, rot.Zz = m.Zx/img.PixDims[2], m.Zy/img.PixDims[2], m.Zz/img.PixDims[2]
	hdr.PixDim[0] = 1
	if rot.Det() < 0 {
		hdr.PixDim[0] = -1
		rot.Xz, rot.Yz, rot.Zz = -rot.Xz, -rot.Yz, -rot.Zz
	}
	var q lin.Q
	if q.SetM(&rot); q.W < 0 {
		q.X, q.Y, q.Z = -q.X, -q.Y, -q.Z
	}
	hdr.QuaternB, hdr.QuaternC, hdr.QuaternD = float32(q.X), float32(q.Y), float32(q.Z)
	hdr.QOffsetX, hdr.QOffsetY, hdr.QOffsetZ = float32(m.Wx), float32(m.Wy), float32(m.Wz)
	copy(hdr.Magic[:], "n+1\x00")
	enc, err := charmap.ISO8859_1.NewEncoder().String(descrip)
	if err != nil {
		enc = descrip
	}
	copy(hdr.Descrip[:], enc)

	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, &hdr); err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteNifti1", path, err)
	}
	buf.Write(make([]byte, 352-348)) // extension flag bytes, all-zero: no extensions

	n := img.NumEl()
	for i := int64(0); i < n; i++ {
		if err := encodeNiftiSample(buf, float64(img.Data[i]), hdr.DataType); err != nil {
			return nerr.Wrap(nerr.FileError, "image.WriteNifti1", path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteNifti1", path, err)
	}
	defer f.Close()
	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	_, err = w.Write(buf.Bytes())
	if err != nil {
		return nerr.Wrap(nerr.FileError, "image.WriteNifti1", path, err)
	}
	return nil
}

func niftiCodeFor(z any) int16 {
	switch z.(type) {
	case uint8:
		return dtUint8
	case int8:
		return dtInt8
	case int16:
		return dtInt16
	case uint16:
		return dtUint16
	case int32:
		return dtInt32
	case uint32:
		return dtUint32
	case int64:
		return dtInt64
	case uint64:
		return dtUint64
	case float32:
		return dtFloat32
	default:
		return dtFloat64
	}
}

func encodeNiftiSample(buf *bytes.Buffer, v float64, dt int16) error {
	switch dt {
	case dtUint8:
		buf.WriteByte(uint8(v))
	case dtInt8:
		buf.WriteByte(byte(int8(v)))
	case dtInt16:
		binary.Write(buf, binary.LittleEndian, int16(v))
	case dtUint16:
		binary.Write(buf, binary.LittleEndian, uint16(v))
	case dtInt32:
		binary.Write(buf, binary.LittleEndian, int32(v))
	case dtUint32:
		binary.Write(buf, binary.LittleEndian, uint32(v))
	case dtFloat32:
		binary.Write(buf, binary.LittleEndian, float32(v))
	case dtInt64:
		binary.Write(buf, binary.LittleEndian, int64(v))
	case dtUint64:
		binary.Write(buf, binary.LittleEndian, uint64(v))
	case dtFloat64:
		binary.Write(buf, binary.LittleEndian, v)
	default:
		return fmt.Errorf("unsupported datatype code %d", dt)
	}
	return nil
}

func readMaybeGzip(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}
	return io.ReadAll(r)
}
