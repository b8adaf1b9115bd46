package surface

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// freesurferMagic is the 3-byte "triangle file" magic 0x00FFFFFE
// (spec.md §6.2), as the 3 bytes actually read from the stream.
const freesurferMagic = 0xFFFFFE

// ReadFreesurfer reads a Freesurfer binary surface file (e.g. lh.pial,
// rh.white): 3-byte magic, two newline-terminated metadata lines, vertex
// and triangle counts, then big-endian float32 vertices and int32
// triangles.
func ReadFreesurfer(path string) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", path, err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var magicBuf [3]byte
	if _, err := io.ReadFull(r, magicBuf[:]); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading magic", err)
	}
	magic := uint32(magicBuf[0])<<16 | uint32(magicBuf[1])<<8 | uint32(magicBuf[2])
	if magic != freesurferMagic {
		return nil, nerr.New(nerr.FileError, "surface.ReadFreesurfer", "bad magic in "+path)
	}
	if _, err := r.ReadString('\n'); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading metadata", err)
	}
	if _, err := r.ReadString('\n'); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading metadata", err)
	}

	var nv, nf int32
	if err := binary.Read(r, binary.BigEndian, &nv); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading vertex count", err)
	}
	if err := binary.Read(r, binary.BigEndian, &nf); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading face count", err)
	}

	verts := make([]lin.V3, nv)
	for i := range verts {
		var xyz [3]float32
		if err := binary.Read(r, binary.BigEndian, &xyz); err != nil {
			return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading vertices", err)
		}
		verts[i] = lin.V3{X: float64(xyz[0]), Y: float64(xyz[1]), Z: float64(xyz[2])}
	}
	faces := make([][3]int, nf)
	for i := range faces {
		var tri [3]int32
		if err := binary.Read(r, binary.BigEndian, &tri); err != nil {
			return nil, nerr.Wrap(nerr.FileError, "surface.ReadFreesurfer", "reading triangles", err)
		}
		faces[i] = [3]int{int(tri[0]), int(tri[1]), int(tri[2])}
	}

	return New(verts, faces)
}

// WriteFreesurfer writes surf as a Freesurfer binary surface file.
// Per-vertex/per-face Fields do not round-trip through this format
// (spec.md §6.2 only guarantees field round-trip through VTK).
func WriteFreesurfer(surf *Surface, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "surface.WriteFreesurfer", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	w.Write([]byte{0xFF, 0xFF, 0xFE})
	w.WriteString("created by nibrary\n\n")
	binary.Write(w, binary.BigEndian, int32(len(surf.Vertices)))
	binary.Write(w, binary.BigEndian, int32(len(surf.Faces)))
	for _, v := range surf.Vertices {
		xyz := [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
		binary.Write(w, binary.BigEndian, xyz)
	}
	for _, t := range surf.Faces {
		tri := [3]int32{int32(t[0]), int32(t[1]), int32(t[2])}
		binary.Write(w, binary.BigEndian, tri)
	}
	if err := w.Flush(); err != nil {
		return nerr.Wrap(nerr.FileError, "surface.WriteFreesurfer", path, err)
	}
	return nil
}
