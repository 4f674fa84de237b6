package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast"
)

func TestACF(t *testing.T) {
	// AR(1)-like data
	n := 100
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		values[i] = 0.7*values[i-1] + float64(i%5-2)*0.1
	}

	acf := ACF(values, 10)
	require.Len(t, acf, 11)

	assert.InDelta(t, 1.0, acf[0], 1e-10, "ACF at lag 0 should be 1")
	for i, v := range acf {
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-10, "ACF at lag %d out of range", i)
	}
}

func TestACFConstantSeries(t *testing.T) {
	assert.Nil(t, ACF([]float64{3, 3, 3, 3}, 2))
}

func TestACFClampsLag(t *testing.T) {
	acf := ACF([]float64{1, 2, 3}, 10)
	assert.Len(t, acf, 3)
}

func TestPACF(t *testing.T) {
	n := 200
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		values[i] = 0.6*values[i-1] + float64(i%7-3)*0.1
	}

	pacf := PACF(values, 5)
	require.Len(t, pacf, 6)
	assert.Equal(t, 1.0, pacf[0])

	acf := ACF(values, 1)
	assert.InDelta(t, acf[1], pacf[1], 1e-12, "PACF at lag 1 equals ACF at lag 1")
}

func TestLjungBox(t *testing.T) {
	// Alternating residuals are strongly autocorrelated.
	n := 100
	alternating := make([]float64, n)
	for i := range alternating {
		alternating[i] = float64(1 - 2*(i%2))
	}

	result, err := LjungBox(alternating, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, result.Lags)
	assert.Equal(t, 10, result.DOF)
	assert.Greater(t, result.Statistic, 0.0)
	assert.Less(t, result.PValue, 0.05)
	assert.False(t, result.Independent(0.05))
}

func TestLjungBoxDegreesOfFreedom(t *testing.T) {
	values := []float64{1, 3, 2, 5, 4, 6, 5, 8, 7, 9, 8, 10}

	result, err := LjungBox(values, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DOF)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)
}

func TestLjungBoxErrors(t *testing.T) {
	_, err := LjungBox([]float64{1, 2, 3, 4}, 0, 0)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)

	_, err = LjungBox([]float64{1, 2}, 1, 0)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)

	_, err = LjungBox([]float64{2, 2, 2, 2}, 2, 0)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
}
