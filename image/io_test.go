package image

import (
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/nibrary/nibrary/math/lin"
)

func geomImage(t *testing.T) *Image[float32] {
	t.Helper()
	var ijk2xyz lin.M4
	ijk2xyz.Xx, ijk2xyz.Yy, ijk2xyz.Zz, ijk2xyz.Ww = 2, 2, 2, 1
	ijk2xyz.Wx, ijk2xyz.Wy, ijk2xyz.Wz = 10, -5, 3
	var order [NDIMS]int
	for i := range order {
		order[i] = i
	}
	img, err := Create[float32](3, [NDIMS]int64{3, 4, 5, 1, 1, 1, 1}, [NDIMS]float64{2, 2, 2, 1, 1, 1, 1}, ijk2xyz, order, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := range img.Data {
		img.Data[i] = float32(i) - 3
	}
	return img
}

func TestNifti1RoundTrip(t *testing.T) {
	img := geomImage(t)
	path := filepath.Join(t.TempDir(), "vol.nii")
	if err := WriteNifti1(img, path, "roundtrip test"); err != nil {
		t.Fatalf("WriteNifti1: %v", err)
	}
	got, descrip, err := ReadNifti1[float32](path)
	if err != nil {
		t.Fatalf("ReadNifti1: %v", err)
	}
	if descrip != "roundtrip test" {
		t.Errorf("descrip got %q", descrip)
	}
	if got.ImgDims != img.ImgDims {
		t.Fatalf("dims mismatch: got %v want %v", got.ImgDims, img.ImgDims)
	}
	for i := range img.Data {
		if math.Abs(float64(got.Data[i]-img.Data[i])) > 1e-3 {
			t.Fatalf("sample %d: got %v want %v", i, got.Data[i], img.Data[i])
		}
	}
	p := lin.V3{X: 11.4, Y: -3.2, Z: 5.6}
	wantWorld := img.Vox2World(p)
	gotWorld := got.Vox2World(p)
	if math.Abs(wantWorld.X-gotWorld.X) > 1e-3 || math.Abs(wantWorld.Y-gotWorld.Y) > 1e-3 || math.Abs(wantWorld.Z-gotWorld.Z) > 1e-3 {
		t.Fatalf("affine mismatch: got %v want %v", gotWorld, wantWorld)
	}
}

func TestMGHRoundTrip(t *testing.T) {
	img := geomImage(t)
	path := filepath.Join(t.TempDir(), "vol.mgz")
	if err := WriteMGH(img, path); err != nil {
		t.Fatalf("WriteMGH: %v", err)
	}
	got, err := ReadMGH[float32](path)
	if err != nil {
		t.Fatalf("ReadMGH: %v", err)
	}
	for i := range img.Data {
		if math.Abs(float64(got.Data[i]-img.Data[i])) > 1e-2 {
			t.Fatalf("sample %d: got %v want %v", i, got.Data[i], img.Data[i])
		}
	}
	p := lin.V3{X: 1, Y: 1, Z: 1}
	wantWorld := img.Vox2World(p)
	gotWorld := got.Vox2World(p)
	if math.Abs(wantWorld.X-gotWorld.X) > 1e-2 || math.Abs(wantWorld.Y-gotWorld.Y) > 1e-2 || math.Abs(wantWorld.Z-gotWorld.Z) > 1e-2 {
		t.Fatalf("affine mismatch: got %v want %v", gotWorld, wantWorld)
	}
}

func TestRawRoundTrip(t *testing.T) {
	img := geomImage(t)
	path := filepath.Join(t.TempDir(), "vol.raw")
	if err := WriteRaw(img, path, binary.LittleEndian); err != nil {
		t.Fatalf("WriteRaw: %v", err)
	}
	got, err := ReadRaw[float32](path, binary.LittleEndian)
	if err != nil {
		t.Fatalf("ReadRaw: %v", err)
	}
	if got.ImgDims != img.ImgDims || got.Ijk2xyz != img.Ijk2xyz {
		t.Fatalf("geometry mismatch")
	}
	for i := range img.Data {
		if got.Data[i] != img.Data[i] {
			t.Fatalf("sample %d: got %v want %v", i, got.Data[i], img.Data[i])
		}
	}
}
