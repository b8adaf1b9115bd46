package surface

// Edge is an undirected mesh edge between two vertex indices (lo<hi)
// with the list of faces incident to it.
type Edge struct {
	V0, V1 int
	Faces  []int
}

// VertexCategory classifies the local fan structure around a vertex
// (spec.md §4.3).
type VertexCategory int

const (
	CategoryRegular VertexCategory = iota
	CategoryBoundary
	CategorySingular
	CategoryOverconnected
)

type topology struct {
	edges         []Edge
	edgeIndex     map[[2]int]int
	boundaryEdges []int // indices into edges

	neighboringVertices [][]int
	adjacentFaces       [][]int

	vertexCategory []VertexCategory
}

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Topology returns the lazily-computed edge/adjacency/boundary caches,
// built once per Surface and shared by every subsequent call.
func (s *Surface) Topology() *topology {
	s.topoOnce.Do(func() {
		s.topo = buildTopology(s)
	})
	return s.topo
}

func buildTopology(s *Surface) *topology {
	t := &topology{
		edgeIndex:           make(map[[2]int]int),
		neighboringVertices: make([][]int, s.NV()),
		adjacentFaces:       make([][]int, s.NV()),
		vertexCategory:      make([]VertexCategory, s.NV()),
	}

	addEdge := func(a, b, face int) {
		k := edgeKey(a, b)
		idx, ok := t.edgeIndex[k]
		if !ok {
			idx = len(t.edges)
			t.edgeIndex[k] = idx
			t.edges = append(t.edges, Edge{V0: k[0], V1: k[1]})
		}
		t.edges[idx].Faces = append(t.edges[idx].Faces, face)
	}

	for f, tri := range s.Faces {
		addEdge(tri[0], tri[1], f)
		addEdge(tri[1], tri[2], f)
		addEdge(tri[2], tri[0], f)
		for _, v := range tri {
			t.adjacentFaces[v] = appendUnique(t.adjacentFaces[v], f)
		}
	}

	neighbourSet := make([]map[int]bool, s.NV())
	for i := range neighbourSet {
		neighbourSet[i] = map[int]bool{}
	}
	for i, e := range t.edges {
		if len(e.Faces) == 1 {
			t.boundaryEdges = append(t.boundaryEdges, i)
		}
		neighbourSet[e.V0][e.V1] = true
		neighbourSet[e.V1][e.V0] = true
	}
	for v, set := range neighbourSet {
		for n := range set {
			t.neighboringVertices[v] = append(t.neighboringVertices[v], n)
		}
	}

	t.categorizeVertices(s)
	return t
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// categorizeVertices determines, per vertex, whether its incident
// faces form a single fan (regular/boundary), several disjoint fans
// (singular), or an overconnected boundary (>=3 boundary edges).
func (t *topology) categorizeVertices(s *Surface) {
	for v := 0; v < s.NV(); v++ {
		faces := t.adjacentFaces[v]
		if len(faces) == 0 {
			continue
		}

		// union-find over incident faces: two faces merge if they
		// share an edge that contains v.
		parent := make(map[int]int, len(faces))
		for _, f := range faces {
			parent[f] = f
		}
		var find func(int) int
		find = func(x int) int {
			for parent[x] != x {
				parent[x] = parent[parent[x]]
				x = parent[x]
			}
			return x
		}
		union := func(a, b int) {
			ra, rb := find(a), find(b)
			if ra != rb {
				parent[ra] = rb
			}
		}

		boundaryAtV := 0
		for _, ei := range t.edgesAtVertex(v) {
			e := t.edges[ei]
			if len(e.Faces) == 1 {
				boundaryAtV++
				continue
			}
			for i := 0; i < len(e.Faces); i++ {
				for j := i + 1; j < len(e.Faces); j++ {
					union(e.Faces[i], e.Faces[j])
				}
			}
		}

		roots := map[int]bool{}
		for _, f := range faces {
			roots[find(f)] = true
		}

		switch {
		case len(roots) > 1:
			t.vertexCategory[v] = CategorySingular
		case boundaryAtV >= 3:
			t.vertexCategory[v] = CategoryOverconnected
		case boundaryAtV > 0:
			t.vertexCategory[v] = CategoryBoundary
		default:
			t.vertexCategory[v] = CategoryRegular
		}
	}
}

func (t *topology) edgesAtVertex(v int) []int {
	var out []int
	for i, e := range t.edges {
		if e.V0 == v || e.V1 == v {
			out = append(out, i)
		}
	}
	return out
}

// VertexCategory reports the local fan classification of vertex v.
func (s *Surface) VertexCategory(v int) VertexCategory {
	return s.Topology().vertexCategory[v]
}

// IsManifold reports whether every vertex is regular or boundary (no
// singular or overconnected vertices).
func (s *Surface) IsManifold() bool {
	if s.manifoldness != ManifoldUnknown {
		return s.manifoldness == Manifold
	}
	if s.NV() == 0 {
		s.manifoldness = Manifold
		return true
	}
	t := s.Topology()
	for _, c := range t.vertexCategory {
		if c == CategorySingular || c == CategoryOverconnected {
			s.manifoldness = NotManifold
			return false
		}
	}
	s.manifoldness = Manifold
	return true
}

// IsClosed reports whether the surface (across all connected
// components) is CLOSED, OPEN, or a mix (spec.md §4.3's isClosed).
func (s *Surface) IsClosed() Closedness {
	if s.closedness != ClosedUnknown {
		return s.closedness
	}
	if s.NV() == 0 {
		s.closedness = Open
		return Open
	}
	comps := s.ConnectedComponents()
	foundOpen, foundClosed := false, false
	for _, c := range comps {
		if c.isClosedComponent() {
			foundClosed = true
		} else {
			foundOpen = true
		}
	}
	switch {
	case foundOpen && foundClosed:
		s.closedness = OpenAndClosed
	case foundClosed:
		s.closedness = Closed
	default:
		s.closedness = Open
	}
	return s.closedness
}

func (s *Surface) isClosedComponent() bool {
	if !s.IsManifold() {
		return false
	}
	return len(s.Topology().boundaryEdges) == 0
}
