package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestGram(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		1, 1,
		1, 2,
		1, 3,
	})
	g := Gram(x)

	assert.Equal(t, 2, g.SymmetricDim())
	assert.InDelta(t, 3.0, g.At(0, 0), 1e-12)
	assert.InDelta(t, 6.0, g.At(0, 1), 1e-12)
	assert.InDelta(t, 14.0, g.At(1, 1), 1e-12)
}

func TestRank(t *testing.T) {
	full := mat.NewDense(2, 2, []float64{2, 1, 1, 3})
	rank, err := Rank(full)
	require.NoError(t, err)
	assert.Equal(t, 2, rank)

	singular := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	rank, err = Rank(singular)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)
}

func TestPseudoInverseMatchesInverse(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{4, 7, 2, 6})
	pinv, err := PseudoInverse(a)
	require.NoError(t, err)

	var inv mat.Dense
	require.NoError(t, inv.Inverse(a))
	assert.True(t, mat.EqualApprox(pinv, &inv, 1e-10))
}

func TestPseudoInverseOfSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	pinv, err := PseudoInverse(a)
	require.NoError(t, err)

	// A·A⁺·A = A
	var tmp, back mat.Dense
	tmp.Mul(a, pinv)
	back.Mul(&tmp, a)
	assert.True(t, mat.EqualApprox(&back, a, 1e-10))
}

func TestInverseSym(t *testing.T) {
	full := mat.NewSymDense(2, []float64{2, 1, 1, 3})
	inv, pinv, err := InverseSym(full)
	require.NoError(t, err)
	assert.False(t, pinv)

	var id mat.Dense
	id.Mul(full, inv)
	assert.True(t, mat.EqualApprox(&id, mat.NewDiagDense(2, []float64{1, 1}), 1e-10))

	singular := mat.NewSymDense(2, []float64{1, 2, 2, 4})
	_, pinv, err = InverseSym(singular)
	require.NoError(t, err)
	assert.True(t, pinv)
}

func TestSolveNormal(t *testing.T) {
	// y = 1 + 2x exactly
	x := mat.NewDense(4, 2, []float64{
		1, 0,
		1, 1,
		1, 2,
		1, 3,
	})
	y := mat.NewVecDense(4, []float64{1, 3, 5, 7})

	beta, _, pinv, err := SolveNormal(x, y, nil)
	require.NoError(t, err)
	assert.False(t, pinv)
	assert.InDelta(t, 1.0, beta.AtVec(0), 1e-10)
	assert.InDelta(t, 2.0, beta.AtVec(1), 1e-10)

	zero, _, _, err := SolveNormal(x, y, []float64{0, 0})
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(beta, zero, 1e-12))

	shrunk, _, _, err := SolveNormal(x, y, []float64{0, 100})
	require.NoError(t, err)
	assert.Less(t, shrunk.AtVec(1), beta.AtVec(1))
}

func TestSymmetrize(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	s := Symmetrize(a)
	assert.InDelta(t, 3.0, s.At(0, 1), 1e-12)
	assert.InDelta(t, 3.0, s.At(1, 0), 1e-12)
}
