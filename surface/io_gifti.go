package surface

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

type giftiFile struct {
	Arrays []giftiArray `xml:"DataArray"`
}

type giftiArray struct {
	Intent   string `xml:"Intent,attr"`
	DataType string `xml:"DataType,attr"`
	Encoding string `xml:"Encoding,attr"`
	Endian   string `xml:"Endian,attr"`
	Data     string `xml:"Data"`
}

// ReadGIFTI reads a GIFTI surface file's NIFTI_INTENT_POINTSET (float32,
// N×3 vertices) and NIFTI_INTENT_TRIANGLE (int32, M×3 faces) data
// arrays, per spec.md §6.2. Base64 and gzipped-base64 encodings are
// supported; ASCII text-encoded arrays are also accepted.
func ReadGIFTI(path string) (*Surface, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadGIFTI", path, err)
	}
	var gf giftiFile
	if err := xml.Unmarshal(raw, &gf); err != nil {
		return nil, nerr.Wrap(nerr.FileError, "surface.ReadGIFTI", "parsing XML", err)
	}

	var verts []lin.V3
	var faces [][3]int
	for _, arr := range gf.Arrays {
		switch {
		case strings.Contains(arr.Intent, "POINTSET"):
			floats, err := decodeGiftiFloats(arr)
			if err != nil {
				return nil, nerr.Wrap(nerr.FileError, "surface.ReadGIFTI", "decoding points", err)
			}
			if len(floats)%3 != 0 {
				return nil, nerr.New(nerr.FileError, "surface.ReadGIFTI", "pointset length not a multiple of 3")
			}
			verts = make([]lin.V3, len(floats)/3)
			for i := range verts {
				verts[i] = lin.V3{X: floats[3*i], Y: floats[3*i+1], Z: floats[3*i+2]}
			}
		case strings.Contains(arr.Intent, "TRIANGLE"):
			ints, err := decodeGiftiInts(arr)
			if err != nil {
				return nil, nerr.Wrap(nerr.FileError, "surface.ReadGIFTI", "decoding triangles", err)
			}
			if len(ints)%3 != 0 {
				return nil, nerr.New(nerr.FileError, "surface.ReadGIFTI", "triangle length not a multiple of 3")
			}
			faces = make([][3]int, len(ints)/3)
			for i := range faces {
				faces[i] = [3]int{ints[3*i], ints[3*i+1], ints[3*i+2]}
			}
		}
	}
	if verts == nil {
		return nil, nerr.New(nerr.FileError, "surface.ReadGIFTI", "no NIFTI_INTENT_POINTSET array found")
	}
	if faces == nil {
		return nil, nerr.New(nerr.FileError, "surface.ReadGIFTI", "no NIFTI_INTENT_TRIANGLE array found")
	}
	return New(verts, faces)
}

func decodeGiftiBytes(arr giftiArray) ([]byte, error) {
	trimmed := strings.TrimSpace(arr.Data)
	switch arr.Encoding {
	case "Base64Binary", "":
		return base64.StdEncoding.DecodeString(trimmed)
	case "GZipBase64Binary":
		raw, err := base64.StdEncoding.DecodeString(trimmed)
		if err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	default:
		return nil, fmt.Errorf("unsupported GIFTI encoding %q", arr.Encoding)
	}
}

func decodeGiftiFloats(arr giftiArray) ([]float64, error) {
	if arr.Encoding == "ASCII" {
		return parseASCIIFloats(arr.Data)
	}
	raw, err := decodeGiftiBytes(arr)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 4
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(raw[4*i:])
		out[i] = float64(math.Float32frombits(bits))
	}
	return out, nil
}

func decodeGiftiInts(arr giftiArray) ([]int, error) {
	if arr.Encoding == "ASCII" {
		floats, err := parseASCIIFloats(arr.Data)
		if err != nil {
			return nil, err
		}
		out := make([]int, len(floats))
		for i, v := range floats {
			out[i] = int(v)
		}
		return out, nil
	}
	raw, err := decodeGiftiBytes(arr)
	if err != nil {
		return nil, err
	}
	n := len(raw) / 4
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(int32(binary.LittleEndian.Uint32(raw[4*i:])))
	}
	return out, nil
}

func parseASCIIFloats(data string) ([]float64, error) {
	fields := strings.Fields(data)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// WriteGIFTI writes surf as a GIFTI file with one Base64Binary,
// little-endian NIFTI_INTENT_POINTSET float32 array and one
// NIFTI_INTENT_TRIANGLE int32 array. Fields are not carried (spec.md
// §6.2 only guarantees field round-trip through VTK).
func WriteGIFTI(surf *Surface, path string) error {
	pointBuf := &bytes.Buffer{}
	for _, v := range surf.Vertices {
		binary.Write(pointBuf, binary.LittleEndian, float32(v.X))
		binary.Write(pointBuf, binary.LittleEndian, float32(v.Y))
		binary.Write(pointBuf, binary.LittleEndian, float32(v.Z))
	}
	triBuf := &bytes.Buffer{}
	for _, t := range surf.Faces {
		binary.Write(triBuf, binary.LittleEndian, int32(t[0]))
		binary.Write(triBuf, binary.LittleEndian, int32(t[1]))
		binary.Write(triBuf, binary.LittleEndian, int32(t[2]))
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<GIFTI Version="1.0" NumberOfDataArrays="2">` + "\n")
	fmt.Fprintf(&b, "<DataArray Intent=\"NIFTI_INTENT_POINTSET\" DataType=\"NIFTI_TYPE_FLOAT32\" "+
		"ArrayIndexingOrder=\"RowMajorOrder\" Dimensionality=\"2\" Dim0=\"%d\" Dim1=\"3\" "+
		"Encoding=\"Base64Binary\" Endian=\"LittleEndian\">\n", len(surf.Vertices))
	b.WriteString("<Data>" + base64.StdEncoding.EncodeToString(pointBuf.Bytes()) + "</Data>\n")
	b.WriteString("</DataArray>\n")
	fmt.Fprintf(&b, "<DataArray Intent=\"NIFTI_INTENT_TRIANGLE\" DataType=\"NIFTI_TYPE_INT32\" "+
		"ArrayIndexingOrder=\"RowMajorOrder\" Dimensionality=\"2\" Dim0=\"%d\" Dim1=\"3\" "+
		"Encoding=\"Base64Binary\" Endian=\"LittleEndian\">\n", len(surf.Faces))
	b.WriteString("<Data>" + base64.StdEncoding.EncodeToString(triBuf.Bytes()) + "</Data>\n")
	b.WriteString("</DataArray>\n")
	b.WriteString("</GIFTI>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return nerr.Wrap(nerr.FileError, "surface.WriteGIFTI", path, err)
	}
	return nil
}
