package track

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// trkHeader is the fixed 1000-byte TrackVis header, grounded on
// original_source/src/dMRI/tractography/io/tractogramWriter_trk.h's
// trkFileStruct layout.
type trkHeader struct {
	IDString      [6]byte
	Dim           [3]int16
	VoxelSize     [3]float32
	Origin        [3]float32
	NScalars      int16
	ScalarName    [10][20]byte
	NProperties   int16
	PropertyName  [10][20]byte
	VoxToRAS      [4][4]float32
	Reserved      [444]byte
	VoxelOrder    [4]byte
	Pad2          [4]byte
	ImageOrientPt [6]float32
	Pad1          [2]byte
	InvertX       byte
	InvertY       byte
	InvertZ       byte
	SwapXY        byte
	SwapYZ        byte
	SwapZX        byte
	NCount        int32
	Version       int32
	HdrSize       int32
}

const trkHeaderSize = 1000

// TRKReference carries the reference-image geometry a TRK file's header
// encodes (dim, voxel size, and the voxel->world affine), per
// original_source's TRKReferenceInfo.
type TRKReference struct {
	ImgDims [3]int64
	PixDims [3]float64
	Ijk2xyz lin.M4
}

// WriteTRK writes streamlines (world-space points) as a TrackVis TRK
// file against ref: each point is transformed to voxel space and offset
// by 0.5 before being written, per tractogramWriter_trk.cpp's
// writeBatch.
func WriteTRK(streamlines []Streamline, ref TRKReference, path string) error {
	var xyz2ijk lin.M4
	if !xyz2ijk.InvAffine(&ref.Ijk2xyz) {
		return nerr.New(nerr.InvalidArgument, "track.WriteTRK", "reference ijk2xyz is not invertible")
	}

	var h trkHeader
	copy(h.IDString[:], "TRACK")
	for i := 0; i < 3; i++ {
		h.Dim[i] = int16(ref.ImgDims[i])
		h.VoxelSize[i] = float32(ref.PixDims[i])
	}
	h.VoxToRAS = affineToRows(ref.Ijk2xyz)
	copy(h.VoxelOrder[:], "LAS")
	h.Version = 2
	h.HdrSize = trkHeaderSize

	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTRK", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTRK", "writing header", err)
	}

	count := 0
	for _, sl := range streamlines {
		if len(sl) == 0 {
			continue
		}
		n := int32(len(sl))
		if err := binary.Write(f, binary.LittleEndian, n); err != nil {
			return nerr.Wrap(nerr.FileError, "track.WriteTRK", "writing streamline length", err)
		}
		for _, pWorld := range sl {
			pVox := xyz2ijk.AppPoint(&pWorld)
			v := [3]float32{float32(pVox.X + 0.5), float32(pVox.Y + 0.5), float32(pVox.Z + 0.5)}
			if err := binary.Write(f, binary.LittleEndian, v); err != nil {
				return nerr.Wrap(nerr.FileError, "track.WriteTRK", "writing point", err)
			}
		}
		count++
	}

	if _, err := f.Seek(0, 0); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTRK", "seeking to rewrite header", err)
	}
	h.NCount = int32(count)
	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTRK", "rewriting header count", err)
	}
	return nil
}

// ReadTRK reads a TrackVis TRK file, returning streamlines translated
// back to world coordinates via the header's vox_to_ras affine.
func ReadTRK(path string) ([]Streamline, TRKReference, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, TRKReference{}, nerr.Wrap(nerr.FileError, "track.ReadTRK", path, err)
	}
	if len(raw) < trkHeaderSize {
		return nil, TRKReference{}, nerr.New(nerr.FileError, "track.ReadTRK", "file shorter than the TRK header")
	}

	var h trkHeader
	if err := binary.Read(bytes.NewReader(raw[:trkHeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, TRKReference{}, nerr.Wrap(nerr.FileError, "track.ReadTRK", "decoding header", err)
	}
	if string(h.IDString[:5]) != "TRACK" {
		return nil, TRKReference{}, nerr.New(nerr.FileError, "track.ReadTRK", "bad id_string in "+path)
	}

	ref := TRKReference{Ijk2xyz: rowsToAffine(h.VoxToRAS)}
	for i := 0; i < 3; i++ {
		ref.ImgDims[i] = int64(h.Dim[i])
		ref.PixDims[i] = float64(h.VoxelSize[i])
	}

	data := raw[trkHeaderSize:]
	var streamlines []Streamline
	off := 0
	for off+4 <= len(data) {
		n := int(int32(binary.LittleEndian.Uint32(data[off:])))
		off += 4
		if n < 0 || off+n*12 > len(data) {
			return nil, TRKReference{}, nerr.New(nerr.FileError, "track.ReadTRK", "truncated streamline data")
		}
		sl := make(Streamline, n)
		for i := 0; i < n; i++ {
			x := readFloat32(data, off)
			y := readFloat32(data, off+4)
			z := readFloat32(data, off+8)
			off += 12
			pVox := lin.V3{X: float64(x) - 0.5, Y: float64(y) - 0.5, Z: float64(z) - 0.5}
			sl[i] = *ref.Ijk2xyz.AppPoint(&pVox)
		}
		streamlines = append(streamlines, sl)
	}
	return streamlines, ref, nil
}

// affineToRows lays out m's Xx..Ww components row-major into a 4x4 array
// (row i = that row's four components), matching the convention
// documented in math/lin/affine.go.
func affineToRows(m lin.M4) [4][4]float32 {
	var out [4][4]float32
	out[0] = [4]float32{float32(m.Xx), float32(m.Xy), float32(m.Xz), float32(m.Xw)}
	out[1] = [4]float32{float32(m.Yx), float32(m.Yy), float32(m.Yz), float32(m.Yw)}
	out[2] = [4]float32{float32(m.Zx), float32(m.Zy), float32(m.Zz), float32(m.Zw)}
	out[3] = [4]float32{float32(m.Wx), float32(m.Wy), float32(m.Wz), float32(m.Ww)}
	return out
}

func rowsToAffine(rows [4][4]float32) lin.M4 {
	var m lin.M4
	m.Xx, m.Xy, m.Xz, m.Xw = float64(rows[0][0]), float64(rows[0][1]), float64(rows[0][2]), float64(rows[0][3])
	m.Yx, m.Yy, m.Yz, m.Yw = float64(rows[1][0]), float64(rows[1][1]), float64(rows[1][2]), float64(rows[1][3])
	m.Zx, m.Zy, m.Zz, m.Zw = float64(rows[2][0]), float64(rows[2][1]), float64(rows[2][2]), float64(rows[2][3])
	m.Wx, m.Wy, m.Wz, m.Ww = float64(rows[3][0]), float64(rows[3][1]), float64(rows[3][2]), float64(rows[3][3])
	return m
}
