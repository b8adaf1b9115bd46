package sphere

import "github.com/nibrary/nibrary/math/lin"

// Rotate re-expresses SH coefficients sh under an affine rotation rot,
// by resampling the spherical function at quad's directions rotated by
// rot's inverse linear part and re-fitting SH coefficients from those
// samples. This avoids building a degree-specific Wigner-D matrix: the
// resample-then-refit approach is exact in the limit of a dense quad
// and a good approximation otherwise, matching spec.md §4.4's affine
// rotation requirement without a closed-form rotation operator.
func Rotate(b *Basis, sh []float64, rot lin.M4, quad *Discretization) []float64 {
	var inv lin.M4
	inv.InvAffine(&rot)

	sf := make([]float64, len(quad.Directions))
	for i, d := range quad.Directions {
		rd := *inv.AppVector(&d)
		sf[i] = b.SH2SF(sh, rd)
	}
	return b.SF2SH(sf, quad.Directions)
}
