// Package pde solves Laplace's equation with Dirichlet boundary
// conditions over a voxel grid, grounded on
// original_source/src/math/PDE/FDM.cpp's finite-difference assembly
// (6-connected stencil, Dirichlet values folded into the right-hand
// side, 1e-6 diagonal regularisation) generalised from Eigen's sparse
// ConjugateGradient+IncompleteCholesky solve to a matrix-free conjugate
// gradient with Jacobi preconditioning (see DESIGN.md).
package pde

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/nibrary/nibrary/image"
	"github.com/nibrary/nibrary/nerr"
)

// Sentinel problem-image values: every other value is a fixed Dirichlet
// boundary condition.
const (
	Interior = math.MaxFloat64
	Exterior = -math.MaxFloat64
)

const (
	tolerance  = 1e-8
	maxIter    = 1000
	regularize = 1e-6
)

// SolveLaplaceDirichlet solves the discrete Laplace equation on problem's
// grid: voxels marked Interior are unknowns, voxels marked Exterior are
// excluded from the stencil (and come back as NaN), every other value is
// a fixed Dirichlet boundary value. Returns the solution image, the same
// shape as problem.
func SolveLaplaceDirichlet(problem *image.Image[float64]) (*image.Image[float64], error) {
	nx, ny, nz := problem.ImgDims[0], problem.ImgDims[1], problem.ImgDims[2]
	numel := int(problem.NumEl())
	offsets := image.NeighbourOffsets(image.Conn6)

	indexMap := make([]int, numel)
	for i := range indexMap {
		indexMap[i] = -1
	}
	eqIndex := 0
	for n := 0; n < numel; n++ {
		if problem.Data[n] == Interior {
			indexMap[n] = eqIndex
			eqIndex++
		}
	}
	if eqIndex == 0 {
		return nil, nerr.New(nerr.InvalidArgument, "pde.SolveLaplaceDirichlet", "no Interior voxels in problem image")
	}

	b := make([]float64, eqIndex)
	diag := make([]float64, eqIndex)
	neighborCols := make([][]int, eqIndex)

	idx3 := func(i, j, k int64) int64 {
		return problem.Sub2ind([image.NDIMS]int64{i, j, k, 0, 0, 0, 0})
	}

	for k := int64(0); k < nz; k++ {
		for j := int64(0); j < ny; j++ {
			for i := int64(0); i < nx; i++ {
				n := idx3(i, j, k)
				if problem.Data[n] != Interior {
					continue
				}
				row := indexMap[n]
				var neighborCount float64
				for _, o := range offsets {
					ni, nj, nk := i+o[0], j+o[1], k+o[2]
					if ni < 0 || ni >= nx || nj < 0 || nj >= ny || nk < 0 || nk >= nz {
						continue
					}
					nn := idx3(ni, nj, nk)
					nv := problem.Data[nn]
					switch {
					case nv == Interior:
						neighborCols[row] = append(neighborCols[row], indexMap[nn])
						neighborCount++
					case nv != Exterior:
						b[row] += nv
						neighborCount++
					}
				}
				diag[row] = neighborCount + regularize
			}
		}
	}

	apply := func(x []float64) []float64 {
		out := make([]float64, eqIndex)
		for row := 0; row < eqIndex; row++ {
			sum := diag[row] * x[row]
			for _, col := range neighborCols[row] {
				sum -= x[col]
			}
			out[row] = sum
		}
		return out
	}

	invDiag := make([]float64, eqIndex)
	for i, d := range diag {
		invDiag[i] = 1 / d
	}

	x := conjugateGradient(apply, b, invDiag)

	out := image.CreateFromTemplate[float64](problem, false)
	for n := 0; n < numel; n++ {
		v := problem.Data[n]
		switch {
		case v == Interior:
			out.Data[n] = x[indexMap[n]]
		case v == Exterior:
			out.Data[n] = math.NaN()
		default:
			out.Data[n] = v
		}
	}
	return out, nil
}

// conjugateGradient solves apply(x) = b with a Jacobi-preconditioned
// matrix-free CG iteration, tolerance and iteration cap matching
// FDM.cpp's solver settings exactly.
func conjugateGradient(apply func([]float64) []float64, b, invDiag []float64) []float64 {
	n := len(b)
	x := mat.NewVecDense(n, nil)
	r := mat.NewVecDense(n, append([]float64{}, b...))
	invDiagVec := mat.NewVecDense(n, invDiag)

	z := mat.NewVecDense(n, make([]float64, n))
	z.MulElemVec(r, invDiagVec)
	p := mat.NewVecDense(n, nil)
	p.CloneFromVec(z)
	rz := mat.Dot(r, z)

	rawP := make([]float64, n)
	for iter := 0; iter < maxIter; iter++ {
		for i := 0; i < n; i++ {
			rawP[i] = p.AtVec(i)
		}
		apVec := mat.NewVecDense(n, apply(rawP))

		pAp := mat.Dot(p, apVec)
		if math.Abs(pAp) < 1e-300 {
			break
		}
		alpha := rz / pAp
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, apVec)

		if math.Sqrt(mat.Dot(r, r)) < tolerance {
			break
		}
		z.MulElemVec(r, invDiagVec)
		rzNew := mat.Dot(r, z)
		beta := rzNew / rz
		p.AddScaledVec(z, beta, p)
		rz = rzNew
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x.AtVec(i)
	}
	return out
}
