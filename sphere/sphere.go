// Package sphere provides direction-set discretization and real
// spherical harmonics for spherical-function images (FODs, ODFs):
// nearest-direction lookup, SH<->SF conversion, signed-axis reorientation
// and affine rotation by re-expansion.
//
// Grounded on original_source/src/math/sphericalFunctions.cpp (direction
// discretization + nearest-neighbour lookup) and
// original_source/src/math/sphericalHarmonics.cpp (real SH basis).
package sphere

import (
	"math"
	"sort"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/mt"
)

// Discretization is a fixed set of sample directions on the sphere (or
// hemisphere, for Even==true antipodally-symmetric sets), each with its
// neighbours precomputed in ascending angular-distance order, per
// NIBR::SF::init/sfNeighbors.
type Discretization struct {
	Directions []lin.V3
	Even       bool // antipodal pairs are treated as identical directions

	neighbors [][]int // per-direction neighbour index, sorted by distance
}

// NewDiscretization builds neighbour lists for an explicit direction set
// (NIBR::SF::init(coordinates,...)).
func NewDiscretization(dirs []lin.V3, even bool) *Discretization {
	d := &Discretization{Directions: dirs, Even: even}
	d.neighbors = make([][]int, len(dirs))
	mt.Run(len(dirs), func(task mt.Task, _ *mt.Barrier) {
		v := task.No
		type pair struct {
			idx  int
			dist float64
		}
		pairs := make([]pair, len(dirs))
		for u := range dirs {
			pairs[u] = pair{u, d.sphericalDist2(dirs[v], dirs[u])}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })
		out := make([]int, len(pairs))
		for i, p := range pairs {
			out[i] = p.idx
		}
		d.neighbors[v] = out
	})
	return d
}

// FibonacciSphere builds a quasi-uniform direction set of n points using
// the golden-angle spiral construction, a common stand-in for the
// original's lattice-shell discretization (spec.md §3.3) when no
// explicit direction set is supplied.
func FibonacciSphere(n int) []lin.V3 {
	dirs := make([]lin.V3, n)
	ga := math.Pi * (3 - math.Sqrt(5))
	for i := 0; i < n; i++ {
		y := 1 - 2*float64(i)/float64(n-1)
		r := math.Sqrt(math.Max(0, 1-y*y))
		theta := ga * float64(i)
		dirs[i] = lin.V3{X: math.Cos(theta) * r, Y: y, Z: math.Sin(theta) * r}
	}
	return dirs
}

func (d *Discretization) sphericalDist2(a, b lin.V3) float64 {
	dd := dot2(a, b)
	if d.Even {
		rd := dot2(a, lin.V3{X: -b.X, Y: -b.Y, Z: -b.Z})
		if rd < dd {
			dd = rd
		}
	}
	return dd
}

func dot2(a, b lin.V3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

// NearestIndex returns the discretization direction closest to dir,
// honouring the Even antipodal symmetry.
func (d *Discretization) NearestIndex(dir lin.V3) int {
	best := -1
	bestDist := math.Inf(1)
	for i, c := range d.Directions {
		dist := d.sphericalDist2(dir, c)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// Neighbors returns the indices of directions within distThresh (squared
// chordal distance) of dir's nearest sample, sorted nearest-first.
func (d *Discretization) Neighbors(dir lin.V3, distThresh float64) []int {
	v := d.NearestIndex(dir)
	if v < 0 {
		return nil
	}
	var out []int
	for _, u := range d.neighbors[v] {
		dist := d.sphericalDist2(d.Directions[v], d.Directions[u])
		if dist >= distThresh {
			break
		}
		out = append(out, u)
	}
	return out
}
