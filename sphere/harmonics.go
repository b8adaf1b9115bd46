package sphere

import (
	"math"

	"github.com/nibrary/nibrary/math/lin"
)

// Basis is a real spherical harmonics basis up to a fixed order, with an
// optional restriction to even degrees (the antipodally-symmetric
// convention used for FODs/ODFs), grounded on the coefficient ordering
// of original_source/src/math/sphericalHarmonics.cpp's precompute: index
// 0 is always the l=0 constant term, followed by one block per degree
// l in ascending m order.
type Basis struct {
	Order    int
	EvenOnly bool

	degrees []int // degree l for each coefficient block start
}

// NewBasis builds a basis of the given maximum degree. If evenOnly,
// only even degrees (0,2,4,...) are included, halving coefficient count
// for antipodally-symmetric functions.
func NewBasis(order int, evenOnly bool) *Basis {
	b := &Basis{Order: order, EvenOnly: evenOnly}
	step := 1
	if evenOnly {
		step = 2
	}
	for l := 0; l <= order; l += step {
		b.degrees = append(b.degrees, l)
	}
	if len(b.degrees) == 0 || b.degrees[0] != 0 {
		b.degrees = append([]int{0}, b.degrees...)
	}
	return b
}

// CoeffCount returns the number of SH coefficients in this basis.
func (b *Basis) CoeffCount() int {
	n := 0
	for _, l := range b.degrees {
		n += 2*l + 1
	}
	return n
}

// Eval returns the value of every basis function at direction dir, in
// coefficient order.
func (b *Basis) Eval(dir lin.V3) []float64 {
	cosTheta := clamp(dir.Z, -1, 1)
	phi := math.Atan2(dir.Y, dir.X)

	out := make([]float64, 0, b.CoeffCount())
	for _, l := range b.degrees {
		for m := -l; m <= l; m++ {
			out = append(out, realSH(l, m, cosTheta, phi))
		}
	}
	return out
}

// SH2SF evaluates a spherical function given its SH coefficients at a
// single direction.
func (b *Basis) SH2SF(sh []float64, dir lin.V3) float64 {
	basis := b.Eval(dir)
	n := len(sh)
	if len(basis) < n {
		n = len(basis)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += sh[i] * basis[i]
	}
	return sum
}

// SF2SH projects sample values at dirs onto this basis via quadrature:
// sh[k] = (4*pi/len(dirs)) * sum_i sf[i]*Y_k(dirs[i]), the standard
// discrete orthonormality-based SH transform for a roughly uniform
// direction set.
func (b *Basis) SF2SH(sf []float64, dirs []lin.V3) []float64 {
	n := b.CoeffCount()
	sh := make([]float64, n)
	if len(dirs) == 0 {
		return sh
	}
	weight := 4 * math.Pi / float64(len(dirs))
	for i, d := range dirs {
		basis := b.Eval(d)
		for k := 0; k < n; k++ {
			sh[k] += sf[i] * basis[k] * weight
		}
	}
	return sh
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// realSH evaluates the real spherical harmonic of degree l, order m at
// (cosTheta, phi), using Robin Green's normalised-Legendre formulation.
func realSH(l, m int, cosTheta, phi float64) float64 {
	const sqrt2 = math.Sqrt2
	if m == 0 {
		return shK(l, 0) * legendre(l, 0, cosTheta)
	}
	if m > 0 {
		return sqrt2 * shK(l, m) * math.Cos(float64(m)*phi) * legendre(l, m, cosTheta)
	}
	return sqrt2 * shK(l, -m) * math.Sin(float64(-m)*phi) * legendre(l, -m, cosTheta)
}

// legendre evaluates the associated Legendre polynomial P_l^m(x), m>=0,
// via the standard three-term recurrence.
func legendre(l, m int, x float64) float64 {
	pmm := 1.0
	if m > 0 {
		somx2 := math.Sqrt((1 - x) * (1 + x))
		fact := 1.0
		for i := 1; i <= m; i++ {
			pmm *= -fact * somx2
			fact += 2.0
		}
	}
	if l == m {
		return pmm
	}
	pmmp1 := x * (2.0*float64(m) + 1.0) * pmm
	if l == m+1 {
		return pmmp1
	}
	pll := 0.0
	for ll := m + 2; ll <= l; ll++ {
		pll = ((2.0*float64(ll)-1.0)*x*pmmp1 - (float64(ll+m)-1.0)*pmm) / float64(ll-m)
		pmm = pmmp1
		pmmp1 = pll
	}
	return pll
}

// shK returns the real-SH normalisation constant K_l^m.
func shK(l, m int) float64 {
	num := (2.0*float64(l) + 1.0) * factorial(l-m)
	den := 4.0 * math.Pi * factorial(l+m)
	return math.Sqrt(num / den)
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
