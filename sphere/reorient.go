package sphere

import (
	"strings"

	"github.com/nibrary/nibrary/math/lin"
	"github.com/nibrary/nibrary/nerr"
)

// Reorient parses a 3-letter signed-axis-order code (e.g. "XYZ", "Xyz",
// "ZXy") into the direction transform it names: code[i]'s letter
// (case-insensitively X/Y/Z) selects which input axis fills output
// slot i, and its case selects the sign. The 6 permutations of 3
// letters times 8 sign combinations give the 48 signed permutations
// original_source/src/math/reorient.cpp enumerates as 48 hand-written
// functions; here they are one parsed table instead.
func Reorient(code string) (func(lin.V3) lin.V3, error) {
	if code == "" {
		code = "XYZ"
	}
	if len(code) != 3 {
		return nil, nerr.New(nerr.InvalidArgument, "sphere.Reorient", "code must name exactly 3 axes")
	}
	var axis [3]int
	var sign [3]float64
	var seen [3]bool
	for i := 0; i < 3; i++ {
		c := code[i]
		switch {
		case c == 'X' || c == 'x':
			axis[i] = 0
		case c == 'Y' || c == 'y':
			axis[i] = 1
		case c == 'Z' || c == 'z':
			axis[i] = 2
		default:
			return nil, nerr.New(nerr.InvalidArgument, "sphere.Reorient", "unknown axis letter in code "+code)
		}
		if seen[axis[i]] {
			return nil, nerr.New(nerr.InvalidArgument, "sphere.Reorient", "code "+code+" does not name a permutation of X,Y,Z")
		}
		seen[axis[i]] = true
		if strings.ToUpper(string(c)) == string(c) {
			sign[i] = 1
		} else {
			sign[i] = -1
		}
	}
	return func(d lin.V3) lin.V3 {
		src := [3]float64{d.X, d.Y, d.Z}
		return lin.V3{
			X: sign[0] * src[axis[0]],
			Y: sign[1] * src[axis[1]],
			Z: sign[2] * src[axis[2]],
		}
	}, nil
}
