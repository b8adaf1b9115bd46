package track

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nibrary/nibrary/math/lin"
)

func sampleStreamlines() []Streamline {
	return []Streamline{
		{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 2, Y: 0.5, Z: 0}},
		{{X: -1, Y: 2, Z: 3}, {X: -1, Y: 2.5, Z: 3}},
	}
}

func assertStreamlinesEqual(t *testing.T, got, want []Streamline, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("streamline count: got %d want %d", len(got), len(want))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("streamline %d point count: got %d want %d", i, len(got[i]), len(want[i]))
		}
		for j := range want[i] {
			a, b := got[i][j], want[i][j]
			if math.Abs(a.X-b.X) > tol || math.Abs(a.Y-b.Y) > tol || math.Abs(a.Z-b.Z) > tol {
				t.Errorf("streamline %d point %d: got %v want %v", i, j, a, b)
			}
		}
	}
}

func TestTCKRoundTrip(t *testing.T) {
	want := sampleStreamlines()
	path := filepath.Join(t.TempDir(), "test.tck")
	if err := WriteTCK(want, path); err != nil {
		t.Fatalf("WriteTCK: %v", err)
	}
	got, err := ReadTCK(path)
	if err != nil {
		t.Fatalf("ReadTCK: %v", err)
	}
	assertStreamlinesEqual(t, got, want, 1e-4)
}

func TestTCKSkipsEmptyStreamlines(t *testing.T) {
	in := []Streamline{{}, {{X: 1, Y: 1, Z: 1}}}
	path := filepath.Join(t.TempDir(), "test.tck")
	if err := WriteTCK(in, path); err != nil {
		t.Fatalf("WriteTCK: %v", err)
	}
	got, err := ReadTCK(path)
	if err != nil {
		t.Fatalf("ReadTCK: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the empty streamline to be dropped, got %d streamlines", len(got))
	}
}

func identityRef() TRKReference {
	var m lin.M4
	m.Xx, m.Yy, m.Zz, m.Ww = 1, 1, 1, 1
	return TRKReference{
		ImgDims: [3]int64{10, 10, 10},
		PixDims: [3]float64{1, 1, 1},
		Ijk2xyz: m,
	}
}

func TestTRKRoundTrip(t *testing.T) {
	want := sampleStreamlines()
	ref := identityRef()
	path := filepath.Join(t.TempDir(), "test.trk")
	if err := WriteTRK(want, ref, path); err != nil {
		t.Fatalf("WriteTRK: %v", err)
	}
	got, gotRef, err := ReadTRK(path)
	if err != nil {
		t.Fatalf("ReadTRK: %v", err)
	}
	assertStreamlinesEqual(t, got, want, 1e-4)
	if gotRef.ImgDims != ref.ImgDims {
		t.Errorf("ImgDims: got %v want %v", gotRef.ImgDims, ref.ImgDims)
	}
}

func TestTRKRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.trk")
	raw := make([]byte, trkHeaderSize+4)
	copy(raw, "NOPE")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := ReadTRK(path); err == nil {
		t.Error("expected an error for a bad id_string")
	}
}
