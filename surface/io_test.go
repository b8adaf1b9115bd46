package surface

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nibrary/nibrary/math/lin"
)

func testTetrahedron() *Surface {
	verts := []lin.V3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	faces := [][3]int{
		{0, 2, 1},
		{0, 1, 3},
		{0, 3, 2},
		{1, 2, 3},
	}
	s, _ := New(verts, faces)
	return s
}

func assertVertsFacesEqual(t *testing.T, got, want *Surface, tol float64) {
	t.Helper()
	if len(got.Vertices) != len(want.Vertices) {
		t.Fatalf("vertex count: got %d want %d", len(got.Vertices), len(want.Vertices))
	}
	for i := range want.Vertices {
		a, b := got.Vertices[i], want.Vertices[i]
		if math.Abs(a.X-b.X) > tol || math.Abs(a.Y-b.Y) > tol || math.Abs(a.Z-b.Z) > tol {
			t.Errorf("vertex %d: got %v want %v", i, a, b)
		}
	}
	if len(got.Faces) != len(want.Faces) {
		t.Fatalf("face count: got %d want %d", len(got.Faces), len(want.Faces))
	}
	for i := range want.Faces {
		if got.Faces[i] != want.Faces[i] {
			t.Errorf("face %d: got %v want %v", i, got.Faces[i], want.Faces[i])
		}
	}
}

func TestVTKRoundTrip(t *testing.T) {
	s := testTetrahedron()
	s.Fields = []Field{{Name: "curv", PerFace: false, Scalars: []float64{0.1, 0.2, 0.3, 0.4}}}

	path := filepath.Join(t.TempDir(), "tet.vtk")
	if err := WriteVTK(s, path); err != nil {
		t.Fatalf("WriteVTK: %v", err)
	}
	got, err := ReadVTK(path)
	if err != nil {
		t.Fatalf("ReadVTK: %v", err)
	}
	assertVertsFacesEqual(t, got, s, 1e-5)

	if len(got.Fields) != 1 || got.Fields[0].Name != "curv" {
		t.Fatalf("fields did not round-trip: %+v", got.Fields)
	}
	for i, v := range got.Fields[0].Scalars {
		if math.Abs(v-s.Fields[0].Scalars[i]) > 1e-5 {
			t.Errorf("field scalar %d: got %v want %v", i, v, s.Fields[0].Scalars[i])
		}
	}
}

func TestFreesurferRoundTrip(t *testing.T) {
	s := testTetrahedron()
	path := filepath.Join(t.TempDir(), "tet.pial")
	if err := WriteFreesurfer(s, path); err != nil {
		t.Fatalf("WriteFreesurfer: %v", err)
	}
	got, err := ReadFreesurfer(path)
	if err != nil {
		t.Fatalf("ReadFreesurfer: %v", err)
	}
	assertVertsFacesEqual(t, got, s, 1e-5)
}

func TestGIFTIRoundTrip(t *testing.T) {
	s := testTetrahedron()
	path := filepath.Join(t.TempDir(), "tet.gii")
	if err := WriteGIFTI(s, path); err != nil {
		t.Fatalf("WriteGIFTI: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	got, err := ReadGIFTI(path)
	if err != nil {
		t.Fatalf("ReadGIFTI: %v", err)
	}
	assertVertsFacesEqual(t, got, s, 1e-5)
}
