package track

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// WriteTCK writes streamlines as an MRtrix TCK file: a plain-text header
// with padded count/file-offset placeholders, then little-endian float32
// point triplets, each streamline terminated by a NaN triplet and the
// whole stream terminated by a final INF triplet.
func WriteTCK(streamlines []Streamline, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.WriteString("mrtrix tracks\n")
	w.WriteString("datatype: Float32LE\n")

	countLine := fmt.Sprintf("count: %20d\n", 0)
	posCount := countOffset(w)
	w.WriteString(countLine)

	fileLine := fmt.Sprintf("file: . %20d\n", 0)
	posFileOffset := countOffset(w)
	w.WriteString(fileLine)
	w.WriteString("END\n")

	dataStart := countOffset(w)
	if err := w.Flush(); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", "writing header", err)
	}

	nan := [3]float32{float32(math.NaN()), float32(math.NaN()), float32(math.NaN())}
	inf := [3]float32{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}

	w = bufio.NewWriter(f)
	total := 0
	for _, sl := range streamlines {
		if len(sl) == 0 {
			continue
		}
		for _, p := range sl {
			if err := writeVec3f32(w, p); err != nil {
				return nerr.Wrap(nerr.FileError, "track.WriteTCK", "writing points", err)
			}
		}
		if err := binary.Write(w, binary.LittleEndian, nan); err != nil {
			return nerr.Wrap(nerr.FileError, "track.WriteTCK", "writing separator", err)
		}
		total++
	}
	if err := binary.Write(w, binary.LittleEndian, inf); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", "writing EOF marker", err)
	}
	if err := w.Flush(); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", "flushing data", err)
	}

	if _, err := f.WriteAt([]byte(fmt.Sprintf("count: %20d\n", total)), posCount); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", "rewriting count", err)
	}
	if _, err := f.WriteAt([]byte(fmt.Sprintf("file: . %20d\n", dataStart)), posFileOffset); err != nil {
		return nerr.Wrap(nerr.FileError, "track.WriteTCK", "rewriting file offset", err)
	}
	return nil
}

func writeVec3f32(w *bufio.Writer, p lin.V3) error {
	v := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
	return binary.Write(w, binary.LittleEndian, v)
}

// countOffset returns the number of bytes currently buffered in w, which
// is the number written so far only while w has not yet flushed; used
// here to record header byte offsets before the corresponding
// placeholder is filled in.
func countOffset(w *bufio.Writer) int64 {
	return int64(w.Buffered())
}

// ReadTCK reads an MRtrix TCK file, skipping the text header (terminated
// by "END\n") and decoding little-endian float32 triplets, splitting
// streamlines at NaN separators and stopping at the final INF marker.
func ReadTCK(path string) ([]Streamline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "track.ReadTCK", path, err)
	}

	marker := []byte("END\n")
	idx := indexOf(raw, marker)
	if idx < 0 {
		return nil, nerr.New(nerr.FileError, "track.ReadTCK", "no END header marker found in "+path)
	}
	data := raw[idx+len(marker):]
	if len(data)%4 != 0 {
		return nil, nerr.New(nerr.FileError, "track.ReadTCK", "data section is not a multiple of 4 bytes")
	}

	var streamlines []Streamline
	var current Streamline
	for off := 0; off+12 <= len(data); off += 12 {
		x := readFloat32(data, off)
		y := readFloat32(data, off+4)
		z := readFloat32(data, off+8)
		if math.IsInf(float64(x), 1) {
			break
		}
		if math.IsNaN(float64(x)) {
			if len(current) > 0 {
				streamlines = append(streamlines, current)
			}
			current = nil
			continue
		}
		current = append(current, lin.V3{X: float64(x), Y: float64(y), Z: float64(z)})
	}
	if len(current) > 0 {
		streamlines = append(streamlines, current)
	}
	return streamlines, nil
}

func readFloat32(b []byte, off int) float32 {
	bits := binary.LittleEndian.Uint32(b[off:])
	return math.Float32frombits(bits)
}

func indexOf(haystack, needle []byte) int {
	n, m := len(haystack), len(needle)
	for i := 0; i+m <= n; i++ {
		if string(haystack[i:i+m]) == string(needle) {
			return i
		}
	}
	return -1
}
