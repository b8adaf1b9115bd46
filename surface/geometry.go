package surface

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
)

type geometry struct {
	faceNormals   []lin.V3
	vertexNormals []lin.V3
	faceAreas     []float64
	totalArea     float64
}

// Geometry returns the lazily-computed normals and areas, built once
// per Surface (spec.md §4.3).
func (s *Surface) Geometry() *geometry {
	s.geomOnce.Do(func() {
		s.geom = buildGeometry(s)
	})
	return s.geom
}

func buildGeometry(s *Surface) *geometry {
	g := &geometry{
		faceNormals: make([]lin.V3, s.NF()),
		faceAreas:   make([]float64, s.NF()),
	}

	mt.Run(s.NF(), func(task mt.Task, _ *mt.Barrier) {
		f := s.Faces[task.No]
		a, b, c := s.Vertices[f[0]], s.Vertices[f[1]], s.Vertices[f[2]]
		e1 := sub(b, a)
		e2 := sub(c, a)
		cr := cross(e1, e2)
		length := norm(cr)
		g.faceAreas[task.No] = 0.5 * length
		if length > 1e-12 {
			g.faceNormals[task.No] = lin.V3{X: cr.X / length, Y: cr.Y / length, Z: cr.Z / length}
		}
	})

	for _, a := range g.faceAreas {
		g.totalArea += a
	}

	g.vertexNormals = make([]lin.V3, s.NV())
	t := s.Topology()
	for v := 0; v < s.NV(); v++ {
		var acc lin.V3
		for _, f := range t.adjacentFaces[v] {
			w := g.faceAreas[f]
			acc.X += g.faceNormals[f].X * w
			acc.Y += g.faceNormals[f].Y * w
			acc.Z += g.faceNormals[f].Z * w
		}
		if l := norm(acc); l > 1e-12 {
			g.vertexNormals[v] = lin.V3{X: acc.X / l, Y: acc.Y / l, Z: acc.Z / l}
		}
	}
	return g
}

// FaceNormal returns the unit outward normal of face f.
func (s *Surface) FaceNormal(f int) lin.V3 { return s.Geometry().faceNormals[f] }

// VertexNormal returns the area-weighted, unit-normalised average of
// the normals of faces incident to vertex v.
func (s *Surface) VertexNormal(v int) lin.V3 { return s.Geometry().vertexNormals[v] }

// FaceArea returns the area of face f.
func (s *Surface) FaceArea(f int) float64 { return s.Geometry().faceAreas[f] }

// Area returns the total surface area.
func (s *Surface) Area() float64 { return s.Geometry().totalArea }

// Volume returns the enclosed volume via the divergence theorem
// (signed tetrahedron volumes against the origin), defined only for a
// closed component (spec.md §4.3); returns (0, false) otherwise.
func (s *Surface) Volume() (float64, bool) {
	if !s.isClosedComponent() {
		return 0, false
	}
	var vol float64
	for _, f := range s.Faces {
		a, b, c := s.Vertices[f[0]], s.Vertices[f[1]], s.Vertices[f[2]]
		vol += (a.X*(b.Y*c.Z-b.Z*c.Y) - a.Y*(b.X*c.Z-b.Z*c.X) + a.Z*(b.X*c.Y-b.Y*c.X)) / 6
	}
	return math.Abs(vol), true
}

func sub(a, b lin.V3) lin.V3   { return lin.V3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z} }
func cross(a, b lin.V3) lin.V3 {
	return lin.V3{X: a.Y*b.Z - a.Z*b.Y, Y: a.Z*b.X - a.X*b.Z, Z: a.X*b.Y - a.Y*b.X}
}
func dot(a, b lin.V3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func norm(a lin.V3) float64   { return math.Sqrt(dot(a, a)) }
