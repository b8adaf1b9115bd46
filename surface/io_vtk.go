package surface

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// ReadVTK reads a legacy VTK POLYDATA mesh, ASCII or binary (big-endian),
// per spec.md §6.2. POINT_DATA/CELL_DATA SCALARS sections are carried
// through as Fields.
func ReadVTK(path string) (*Surface, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	header := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "reading header", err)
		}
		header = append(header, strings.TrimSpace(line))
	}
	binaryFormat := strings.EqualFold(header[2], "BINARY")
	if !binaryFormat && !strings.EqualFold(header[2], "ASCII") {
		return nil, nerr.New(nerr.FileError, "surface.ReadVTK", "unsupported format line: "+header[2])
	}

	s := &Surface{}
	var pointDataN, cellDataN int
	var inPointData, inCellData bool

	for {
		tok, err := nextToken(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "scanning", err)
		}
		switch strings.ToUpper(tok) {
		case "DATASET":
			kind, _ := nextToken(r)
			if !strings.EqualFold(kind, "POLYDATA") {
				return nil, nerr.New(nerr.FileError, "surface.ReadVTK", "unsupported dataset "+kind)
			}
		case "POINTS":
			nStr, _ := nextToken(r)
			n, _ := strconv.Atoi(nStr)
			nextToken(r) // datatype, always float/double here
			s.Vertices = make([]lin.V3, n)
			for i := 0; i < n; i++ {
				x, y, z, err := readVec3(r, binaryFormat)
				if err != nil {
					return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "reading points", err)
				}
				s.Vertices[i] = lin.V3{X: x, Y: y, Z: z}
			}
		case "POLYGONS", "TRIANGLE_STRIPS":
			nStr, _ := nextToken(r)
			n, _ := strconv.Atoi(nStr)
			nextToken(r) // total int count, unused
			for i := 0; i < n; i++ {
				count, err := readInt(r, binaryFormat)
				if err != nil {
					return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "reading polygon size", err)
				}
				idx := make([]int, count)
				for k := 0; k < count; k++ {
					v, err := readInt(r, binaryFormat)
					if err != nil {
						return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "reading polygon index", err)
					}
					idx[k] = v
				}
				for k := 1; k+1 < count; k++ {
					s.Faces = append(s.Faces, [3]int{idx[0], idx[k], idx[k+1]})
				}
			}
		case "POINT_DATA":
			nStr, _ := nextToken(r)
			pointDataN, _ = strconv.Atoi(nStr)
			inPointData, inCellData = true, false
		case "CELL_DATA":
			nStr, _ := nextToken(r)
			cellDataN, _ = strconv.Atoi(nStr)
			inPointData, inCellData = false, true
		case "SCALARS":
			name, _ := nextToken(r)
			nextToken(r) // datatype
			n := pointDataN
			perFace := inCellData
			if inCellData {
				n = cellDataN
			}
			peeked, _ := r.Peek(32)
			if strings.HasPrefix(strings.TrimSpace(strings.SplitN(string(peeked), "\n", 2)[0]), "LOOKUP_TABLE") {
				nextToken(r)
				nextToken(r)
			}
			field := Field{Name: name, PerFace: perFace, Scalars: make([]float64, n)}
			for i := 0; i < n; i++ {
				v, err := readFloat(r, binaryFormat)
				if err != nil {
					return nil, nerr.Wrap(nerr.FileError, "surface.ReadVTK", "reading scalars", err)
				}
				field.Scalars[i] = v
			}
			s.Fields = append(s.Fields, field)
		case "LOOKUP_TABLE":
			nextToken(r) // name
			nextToken(r) // count, no table data follows for "default"
		}
	}

	if _, err := New(s.Vertices, s.Faces); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteVTK writes surf as an ASCII legacy VTK POLYDATA mesh, with any
// Fields written as POINT_DATA/CELL_DATA SCALARS.
func WriteVTK(surf *Surface, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return nerr.Wrap(nerr.FileError, "surface.WriteVTK", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprint(w, "# vtk DataFile Version 3.0\n")
	fmt.Fprint(w, "nibrary surface\n")
	fmt.Fprint(w, "ASCII\n")
	fmt.Fprint(w, "DATASET POLYDATA\n")
	fmt.Fprintf(w, "POINTS %d float\n", len(surf.Vertices))
	for _, v := range surf.Vertices {
		fmt.Fprintf(w, "%g %g %g\n", v.X, v.Y, v.Z)
	}
	fmt.Fprintf(w, "POLYGONS %d %d\n", len(surf.Faces), 4*len(surf.Faces))
	for _, t := range surf.Faces {
		fmt.Fprintf(w, "3 %d %d %d\n", t[0], t[1], t[2])
	}
	for _, field := range surf.Fields {
		if field.PerFace {
			fmt.Fprintf(w, "CELL_DATA %d\n", len(field.Scalars))
		} else {
			fmt.Fprintf(w, "POINT_DATA %d\n", len(field.Scalars))
		}
		fmt.Fprintf(w, "SCALARS %s float 1\n", field.Name)
		fmt.Fprint(w, "LOOKUP_TABLE default\n")
		for _, v := range field.Scalars {
			fmt.Fprintf(w, "%g\n", v)
		}
	}
	if err := w.Flush(); err != nil {
		return nerr.Wrap(nerr.FileError, "surface.WriteVTK", path, err)
	}
	return nil
}

func nextToken(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
			if b.Len() > 0 {
				return b.String(), nil
			}
			continue
		}
		b.WriteByte(c)
	}
}

func readInt(r *bufio.Reader, binaryFormat bool) (int, error) {
	if binaryFormat {
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		return int(int32(binary.BigEndian.Uint32(buf[:]))), nil
	}
	tok, err := nextToken(r)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	return v, err
}

func readFloat(r *bufio.Reader, binaryFormat bool) (float64, error) {
	if binaryFormat {
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, err
		}
		bits := binary.BigEndian.Uint32(buf[:])
		return float64(math.Float32frombits(bits)), nil
	}
	tok, err := nextToken(r)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(tok, 64)
}

func readVec3(r *bufio.Reader, binaryFormat bool) (x, y, z float64, err error) {
	if x, err = readFloat(r, binaryFormat); err != nil {
		return
	}
	if y, err = readFloat(r, binaryFormat); err != nil {
		return
	}
	z, err = readFloat(r, binaryFormat)
	return
}
