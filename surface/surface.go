// Package surface provides the triangular mesh container: vertex/face
// arrays, lazily-derived topology and geometry, an AABB tree, a
// fast-winding-number query, point-in-mesh classification and
// segment-mesh intersection.
//
// Package surface is grounded on original_source/src/surface/*.cpp,
// generalised from NIBR::Surface's owning-pointer C++ caches into
// idiomatic lazily-computed Go fields guarded by sync.Once.
package surface

import (
	"sync"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// Manifoldness classifies a surface's local vertex fans.
type Manifoldness int

const (
	ManifoldUnknown Manifoldness = iota
	Manifold
	NotManifold
)

// Closedness classifies a surface's boundary structure.
type Closedness int

const (
	ClosedUnknown Closedness = iota
	Open
	Closed
	OpenAndClosed
)

// Field carries a named per-vertex or per-face attribute, scalar or
// 3-vector, without the core needing to know what the field means.
// Only Scalars round-trip, through WriteVTK/ReadVTK; Vectors are not
// written by any writer, and the GIFTI and Freesurfer readers and
// writers carry no fields.
type Field struct {
	Name    string
	PerFace bool // false => per-vertex
	Scalars []float64
	Vectors []lin.V3 // either Scalars or Vectors is populated, never both
}

// Surface is a triangular mesh: vertex positions in world space and
// ordered vertex-index triples defining triangle orientation.
type Surface struct {
	Vertices []lin.V3
	Faces    [][3]int
	Fields   []Field

	topoOnce sync.Once
	topo     *topology

	geomOnce sync.Once
	geom     *geometry

	compOnce sync.Once
	comps    []*Surface

	aabbOnce sync.Once
	aabb     *aabbTree

	manifoldness Manifoldness
	closedness   Closedness

	boundaryBand float64 // not read by any query; PointInsideFast does not use it

	rasterOnce sync.Once
	raster     *pointCheck
}

// New validates and wraps vertex/face arrays into a Surface. Face
// indices must lie in [0,len(vertices)); this is the only structural
// invariant the core enforces at construction time (spec.md §3.2).
func New(vertices []lin.V3, faces [][3]int) (*Surface, error) {
	nv := len(vertices)
	for _, f := range faces {
		for _, idx := range f {
			if idx < 0 || idx >= nv {
				return nil, nerr.New(nerr.InvalidArgument, "surface.New", "face index out of [0,nv) range")
			}
		}
	}
	return &Surface{Vertices: vertices, Faces: faces}, nil
}

// NV returns the vertex count.
func (s *Surface) NV() int { return len(s.Vertices) }

// NF returns the face count.
func (s *Surface) NF() int { return len(s.Faces) }

// FaceVerts returns the three world-space vertices of face f, in
// winding order.
func (s *Surface) FaceVerts(f int) (a, b, c lin.V3) {
	tri := s.Faces[f]
	return s.Vertices[tri[0]], s.Vertices[tri[1]], s.Vertices[tri[2]]
}

// Field returns the named field, or nil if none matches.
func (s *Surface) Field(name string) *Field {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
