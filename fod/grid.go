package fod

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/sphere"
)

// SphereIndexGrid is a cubic voxel-lattice precomputation mapping any
// direction, rounded onto the lattice, to its nearest sphere.Discretization
// index in O(1), trading memory for the O(n) scan NearestIndex does.
// Grounded directly on
// original_source/src/dMRI/imageTypes/fod_image_discretizer.cpp's
// fillDiscVolSph/vertexCoord2volInd: points within half a lattice
// diagonal of a thin spherical shell of radius `radius` are assigned the
// index of the nearest discretization direction; everything else is -1.
//
// When disc.Even (antipodal pairs identified), the grid covers only the
// z>=0 half-shell and Lookup folds z<0 queries by negating x/y, exactly
// mirroring vertexCoord2volInd's isAsym branch (there "isAsym" means
// full, asymmetric sphere; here Even means folded, so the branches are
// inverted relative to the original naming).
type SphereIndexGrid struct {
	disc   *sphere.Discretization
	dim    int
	radius float64
	shift  float64
	zMin   int // 0 when folded (Even), -dim/2 when full sphere

	inds []int32 // dim*dim*zExtent, -1 where no shell point falls
}

// NewSphereIndexGrid builds a lattice of the given odd dimension (13/11
// in the original, for even/asymmetric FODs respectively) around disc.
func NewSphereIndexGrid(disc *sphere.Discretization, dim int) *SphereIndexGrid {
	g := &SphereIndexGrid{disc: disc, dim: dim}
	r := (float64(dim) - 1) / 2
	g.radius = r - 0.5
	g.shift = g.radius + 0.5

	zExtent := dim
	zStart := -int(r)
	if disc.Even {
		zExtent = dim/2 + 1
		zStart = 0
	}
	g.zMin = zStart

	g.inds = make([]int32, dim*dim*zExtent)
	for i := range g.inds {
		g.inds[i] = -1
	}

	half3 := math.Sqrt(3) / 2
	for xi := 0; xi < dim; xi++ {
		x := float64(xi) - r
		for yi := 0; yi < dim; yi++ {
			y := float64(yi) - r
			for zi := 0; zi < zExtent; zi++ {
				z := float64(zi + zStart)
				dist := math.Sqrt(x*x + y*y + z*z)
				if math.Abs(dist-g.radius) >= half3 {
					continue
				}
				dir := lin.V3{X: x, Y: y, Z: z}
				n := math.Sqrt(dir.X*dir.X + dir.Y*dir.Y + dir.Z*dir.Z)
				if n == 0 {
					continue
				}
				dir.X, dir.Y, dir.Z = dir.X/n, dir.Y/n, dir.Z/n
				pos := xi + (yi+zi*dim)*dim
				g.inds[pos] = int32(disc.NearestIndex(dir))
			}
		}
	}
	return g
}

// Lookup rounds dir onto the lattice and returns the precomputed nearest
// discretization index, or -1 if dir rounds outside the populated shell.
func (g *SphereIndexGrid) Lookup(dir lin.V3) int {
	x, y, z := dir.X, dir.Y, dir.Z
	if g.disc.Even && z < 0 {
		x, y, z = -x, -y, -z
	}

	xi := int(math.Round(x*g.radius)) + int(g.shift)
	yi := int(math.Round(y*g.radius)) + int(g.shift)
	var zi int
	if g.disc.Even {
		zi = int(math.Round(z * g.radius))
	} else {
		zi = int(math.Round(z*g.radius)) + int(g.shift)
	}

	zExtent := g.dim
	if g.disc.Even {
		zExtent = g.dim/2 + 1
	}
	if xi < 0 || xi >= g.dim || yi < 0 || yi >= g.dim || zi < 0 || zi >= zExtent {
		return -1
	}
	return int(g.inds[xi+(yi+zi*g.dim)*g.dim])
}
