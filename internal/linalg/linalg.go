// Package linalg wraps the gonum solves used by the estimators: Gram
// matrices, rank checks, and inverses with a pseudo-inverse fallback.
package linalg

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast"
)

// Gram returns XᵀX.
func Gram(x mat.Matrix) *mat.SymDense {
	_, c := x.Dims()
	g := mat.NewSymDense(c, nil)
	g.SymOuterK(1, x.T())
	return g
}

// AddDiagonal returns a + diag(d). d must have one entry per row of a.
func AddDiagonal(a *mat.SymDense, d []float64) *mat.SymDense {
	n := a.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	out.CopySym(a)
	for i := 0; i < n; i++ {
		out.SetSym(i, i, out.At(i, i)+d[i])
	}
	return out
}

// Rank returns the numerical rank of a, counting singular values above
// rcond·σmax.
func Rank(a mat.Matrix) (int, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDNone) {
		return 0, fmt.Errorf("%w: singular value decomposition failed", goforecast.ErrNumericalInstability)
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, nil
	}
	tol := rcond * values[0]
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank, nil
}

// rcond is the relative cutoff below which singular values count as zero.
const rcond = 1e-12

// PseudoInverse returns the Moore-Penrose pseudo-inverse of a.
// Singular values below rcond·σmax are treated as zero.
func PseudoInverse(a mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("%w: singular value decomposition failed", goforecast.ErrNumericalInstability)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	cutoff := 0.0
	if len(values) > 0 {
		cutoff = rcond * values[0]
	}
	inv := make([]float64, len(values))
	for i, s := range values {
		if s > cutoff {
			inv[i] = 1 / s
		}
	}

	// V · diag(1/s) · Uᵀ
	var vs mat.Dense
	vs.Apply(func(_, j int, x float64) float64 { return x * inv[j] }, &v)
	var out mat.Dense
	out.Mul(&vs, u.T())
	return &out, nil
}

// InverseSym inverts a symmetric positive semi-definite matrix. A full-rank
// matrix is inverted through its Cholesky factorisation; a rank-deficient one
// falls back to the pseudo-inverse, reported by the second return value.
func InverseSym(a *mat.SymDense) (*mat.SymDense, bool, error) {
	rank, err := Rank(a)
	if err != nil {
		return nil, false, err
	}

	if rank == a.SymmetricDim() {
		var chol mat.Cholesky
		if chol.Factorize(a) {
			var inv mat.SymDense
			if err := chol.InverseTo(&inv); err == nil {
				return &inv, false, nil
			}
		}
	}

	pinv, err := PseudoInverse(a)
	if err != nil {
		return nil, true, err
	}
	sym := Symmetrize(pinv)
	if !finite(sym) {
		return nil, true, fmt.Errorf("%w: pseudo-inverse is not finite", goforecast.ErrNumericalInstability)
	}
	return sym, true, nil
}

// Symmetrize returns (a + aᵀ)/2 for a square matrix.
func Symmetrize(a mat.Matrix) *mat.SymDense {
	n, _ := a.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}
	return out
}

// SolveNormal solves the normal equations (XᵀX + diag(penalty))β = Xᵀy and
// returns β together with the inverse of the system matrix. A nil penalty
// solves plain least squares.
func SolveNormal(x *mat.Dense, y *mat.VecDense, penalty []float64) (*mat.VecDense, *mat.SymDense, bool, error) {
	system := Gram(x)
	if penalty != nil {
		system = AddDiagonal(system, penalty)
	}

	inv, pinv, err := InverseSym(system)
	if err != nil {
		return nil, nil, pinv, err
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)
	var beta mat.VecDense
	beta.MulVec(inv, &xty)

	for i := 0; i < beta.Len(); i++ {
		if math.IsNaN(beta.AtVec(i)) || math.IsInf(beta.AtVec(i), 0) {
			return nil, nil, pinv, fmt.Errorf("%w: coefficient %d is not finite", goforecast.ErrNumericalInstability, i)
		}
	}
	return &beta, inv, pinv, nil
}

func finite(a mat.Matrix) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
