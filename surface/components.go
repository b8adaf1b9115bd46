package surface

import "github.com/nibrary/nibrary/math/lin"

// ConnectedComponents partitions the vertex set by DFS on the vertex
// adjacency graph, materialising each component as its own Surface
// copy, grounded on the iterative-stack DFS of
// original_source/src/surface/connectedComponents.cpp.
func (s *Surface) ConnectedComponents() []*Surface {
	s.compOnce.Do(func() {
		s.comps = buildComponents(s)
	})
	return s.comps
}

func buildComponents(s *Surface) []*Surface {
	t := s.Topology()
	visited := make([]bool, s.NV())
	var comps []*Surface

	for i := 0; i < s.NV(); i++ {
		if visited[i] {
			continue
		}
		var members []int
		stack := []int{i}
		for len(stack) > 0 {
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[v] {
				continue
			}
			visited[v] = true
			members = append(members, v)
			for _, n := range t.neighboringVertices[v] {
				if !visited[n] {
					stack = append(stack, n)
				}
			}
		}
		comps = append(comps, submesh(s, members))
	}
	return comps
}

// submesh extracts the induced sub-surface on the given vertex set,
// remapping face indices and dropping faces with any vertex outside
// the set.
func submesh(s *Surface, members []int) *Surface {
	out := &Surface{Vertices: make([]lin.V3, 0, len(members))}
	newIndex := make([]int, len(s.Vertices))
	for i := range newIndex {
		newIndex[i] = -1
	}
	inSet := make(map[int]bool, len(members))
	for _, v := range members {
		newIndex[v] = len(out.Vertices)
		out.Vertices = append(out.Vertices, s.Vertices[v])
		inSet[v] = true
	}
	for _, f := range s.Faces {
		if inSet[f[0]] && inSet[f[1]] && inSet[f[2]] {
			out.Faces = append(out.Faces, [3]int{newIndex[f[0]], newIndex[f[1]], newIndex[f[2]]})
		}
	}
	return out
}
