package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast"
)

func TestNewAR(t *testing.T) {
	m, err := NewAR(3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order())
	assert.Equal(t, "AR(3)", m.String())
	assert.Equal(t, KindAR, m.Kind())

	for _, p := range []int{0, -1} {
		_, err := NewAR(p)
		assert.ErrorIs(t, err, goforecast.ErrInvalidArgument, "p=%d", p)
	}
}

func TestARRecoversPerfectRecurrence(t *testing.T) {
	m, err := NewAR(1)
	require.NoError(t, err)
	require.NoError(t, m.Fit(mustSeries(t, []float64{1, 2, 3, 4, 5, 6})))

	res := m.Result()
	intercept, _ := res.Param(ParamIntercept)
	phi, _ := res.Param(PhiName(1))
	assert.InDelta(t, 1.0, intercept, 1e-8)
	assert.InDelta(t, 1.0, phi, 1e-8)
	assert.False(t, res.PseudoInverse)

	require.Len(t, res.Fitted, 6)
	assert.True(t, math.IsNaN(res.Fitted[0]), "first fitted value is undefined")
	assert.True(t, math.IsNaN(res.Residuals[0]))
	assert.InDeltaSlice(t, []float64{2, 3, 4, 5, 6}, res.Fitted[1:], 1e-8)
}

func TestARForecastRecursion(t *testing.T) {
	series := mustSeries(t, []float64{1, 2, 3, 4, 5, 6})
	m, err := NewAR(1)
	require.NoError(t, err)
	require.NoError(t, m.Fit(series))

	forecast, err := m.Forecast(3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7, 8, 9}, forecast.Values(), 1e-8)
	assert.Equal(t, series.NextTimestamps(3), forecast.Timestamps())
}

func TestARPredictRepeatsOneStep(t *testing.T) {
	series := mustSeries(t, []float64{1, 2, 3, 4, 5, 6})
	m, err := NewAR(1)
	require.NoError(t, err)
	require.NoError(t, m.Fit(series))

	pred, err := m.Predict(series.NextTimestamps(3))
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{7, 7, 7}, pred.Values(), 1e-8)

	res, err := m.PredictWithUncertainty(series.NextTimestamps(2))
	require.NoError(t, err)
	assert.False(t, res.HasVariance())
}

func TestARRankDeficientFallsBackToPseudoInverse(t *testing.T) {
	m, err := NewAR(1)
	require.NoError(t, err)
	require.NoError(t, m.Fit(mustSeries(t, []float64{5, 5, 5, 5, 5})))

	res := m.Result()
	assert.True(t, res.PseudoInverse)

	forecast, err := m.Forecast(2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{5, 5}, forecast.Values(), 1e-8)
}

func TestARFitAR1(t *testing.T) {
	phi := 0.7
	m, err := NewAR(1)
	require.NoError(t, err)
	require.NoError(t, m.Fit(mustSeries(t, ar1Values(200, phi))))

	res := m.Result()
	est, ok := res.Param(PhiName(1))
	require.True(t, ok)
	t.Logf("True AR coeff: %f, Estimated: %f", phi, est)
	assert.InDelta(t, phi, est, 0.3)

	sigma2, _ := res.Param(ParamSigma2)
	assert.Greater(t, sigma2, 0.0)
	require.NotNil(t, res.Covariance)
	assert.Equal(t, 2, res.Covariance.SymmetricDim())
}

func TestARErrors(t *testing.T) {
	m, err := NewAR(3)
	require.NoError(t, err)

	_, err = m.Forecast(2)
	assert.ErrorIs(t, err, goforecast.ErrNotFitted)
	_, err = m.Predict(hours(epochForTests(), 1))
	assert.ErrorIs(t, err, goforecast.ErrNotFitted)

	err = m.Fit(mustSeries(t, []float64{1, 2, 3}))
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
	assert.False(t, m.Result().IsFitted)

	require.NoError(t, m.Fit(mustSeries(t, ar1Values(50, 0.5))))
	_, err = m.Forecast(0)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
	_, err = m.Predict(nil)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
}

func TestARRefitOverwritesResult(t *testing.T) {
	m, err := NewAR(1)
	require.NoError(t, err)

	require.NoError(t, m.Fit(mustSeries(t, ar1Values(50, 0.5))))
	first := m.Result()

	require.NoError(t, m.Fit(mustSeries(t, []float64{1, 2, 3, 4, 5, 6})))
	second := m.Result()

	assert.Len(t, first.Fitted, 50)
	assert.Len(t, second.Fitted, 6)

	// A failed fit leaves the model unfitted.
	require.Error(t, m.Fit(mustSeries(t, []float64{1})))
	assert.False(t, m.Result().IsFitted)
	assert.Empty(t, m.Result().Params)
}
