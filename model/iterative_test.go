package model

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/timeseries"
)

func TestIterativePredictLength(t *testing.T) {
	series := mustSeries(t, ar1Values(40, 0.5))

	tests := []struct {
		name     string
		build    func() (Model, error)
		minTrain int
	}{
		{"ar", func() (Model, error) { return asModel(NewAR(2)) }, 3},
		{"bayesian_ar", func() (Model, error) { return asModel(NewBayesianAR(1, Prior{Lambda: 1})) }, 2},
		{"arima", func() (Model, error) { return asModel(NewARIMA(1, 1, 1)) }, 4},
		{"linear", func() (Model, error) { return asModel(NewLinear(0)) }, 2},
		{"ridge", func() (Model, error) { return asModel(NewRidge(1, 0)) }, 2},
		{"ses", func() (Model, error) { return asModel(NewSES(0.5)) }, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			require.NoError(t, err)
			assert.Equal(t, tt.minTrain, m.MinTrainSize())

			cfg := DefaultIterativeConfig()
			cfg.Horizon = 3
			res, err := IterativePredict(m, series, cfg)
			require.NoError(t, err)

			want := series.Len() - tt.minTrain + 3
			assert.Equal(t, want, res.Forecast.Len())
			assert.Equal(t, series.Time(tt.minTrain), res.Forecast.Time(0))
			next := series.NextTimestamps(3)
			last, _ := res.Forecast.Last()
			assert.Equal(t, next[2], last)
		})
	}
}

func TestIterativePredictValidation(t *testing.T) {
	m, err := NewAR(3)
	require.NoError(t, err)

	cfg := DefaultIterativeConfig()
	cfg.Horizon = 0
	_, err = IterativePredict(m, mustSeries(t, lineValues(10, 0, 1)), cfg)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)

	_, err = IterativePredict(m, mustSeries(t, []float64{1, 2, 3}), nil)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)

	_, err = IterativePredict(m, nil, nil)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
}

func TestIterativePredictExactLine(t *testing.T) {
	series := mustSeries(t, lineValues(12, 2, 3))
	m, err := NewLinear(0)
	require.NoError(t, err)

	cfg := DefaultIterativeConfig()
	cfg.Horizon = 2
	cfg.ReturnUncertainty = true
	res, err := IterativePredict(m, series, cfg)
	require.NoError(t, err)

	want := lineValues(14, 2, 3)[2:]
	assert.InDeltaSlice(t, want, res.Forecast.Values(), 1e-9)
	require.True(t, res.HasVariance())
	assert.Len(t, res.Variance, len(want))
	for _, v := range res.Variance {
		assert.InDelta(t, 0, v, 1e-9)
	}
}

func TestIterativePredictUncertaintyUnsupported(t *testing.T) {
	m, err := NewAR(1)
	require.NoError(t, err)

	cfg := DefaultIterativeConfig()
	cfg.ReturnUncertainty = true
	res, err := IterativePredict(m, mustSeries(t, ar1Values(20, 0.5)), cfg)
	require.NoError(t, err)
	assert.False(t, res.HasVariance())
	assert.Nil(t, res.Variance)
}

func TestIterativePredictBayesianVariance(t *testing.T) {
	m, err := NewBayesianAR(1, Prior{Lambda: 0.1})
	require.NoError(t, err)

	cfg := DefaultIterativeConfig()
	cfg.ReturnUncertainty = true
	res, err := IterativePredict(m, mustSeries(t, ar1Values(20, 0.5)), cfg)
	require.NoError(t, err)
	require.Len(t, res.Variance, res.Forecast.Len())
	for _, v := range res.Variance {
		assert.Greater(t, v, 0.0)
	}
}

func TestIterativePredictFeedback(t *testing.T) {
	series := mustSeries(t, lineValues(10, 1, 1))

	run := func(feed bool) []float64 {
		m, err := NewAR(1)
		require.NoError(t, err)
		cfg := DefaultIterativeConfig()
		cfg.Horizon = 3
		cfg.FeedPredictions = feed
		res, err := IterativePredict(m, series, cfg)
		require.NoError(t, err)
		return res.Forecast.Values()
	}

	history := []float64{3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDeltaSlice(t, append(cloneFloats(history), 11, 12, 13), run(true), 1e-9)
	assert.InDeltaSlice(t, append(cloneFloats(history), 11, 11, 11), run(false), 1e-9)
}

func TestIterativePredictFeedbackIgnoredForTrend(t *testing.T) {
	series := mustSeries(t, noisyLineValues(20, 0, 1))

	run := func(feed bool) []float64 {
		m, err := NewLinear(0)
		require.NoError(t, err)
		cfg := DefaultIterativeConfig()
		cfg.Horizon = 4
		cfg.FeedPredictions = feed
		res, err := IterativePredict(m, series, cfg)
		require.NoError(t, err)
		return res.Forecast.Values()
	}

	assert.Equal(t, run(false), run(true))
}

func TestIterativePredictSlidingWindow(t *testing.T) {
	values := append(lineValues(15, 50, 0), lineValues(10, 0, 2)...)
	series := mustSeries(t, values)

	m, err := NewLinear(5)
	require.NoError(t, err)
	cfg := DefaultIterativeConfig()
	cfg.Horizon = 2
	res, err := IterativePredict(m, series, cfg)
	require.NoError(t, err)

	assert.Equal(t, series.Len()-5+2, res.Forecast.Len())
	// Once the window lies entirely past the shift the line is exact.
	out := res.Forecast.Values()
	assert.InDeltaSlice(t, []float64{20, 22}, out[len(out)-2:], 1e-9)
}

// flakyAR fails to fit on training sets of one particular size.
type flakyAR struct {
	*AR
	failAt int
}

func (f *flakyAR) Fit(series *timeseries.Series) error {
	if series.Len() == f.failAt {
		return errors.New("synthetic fit failure")
	}
	return f.AR.Fit(series)
}

func TestIterativePredictSkipFailedFolds(t *testing.T) {
	series := mustSeries(t, ar1Values(15, 0.5))
	ar, err := NewAR(1)
	require.NoError(t, err)
	m := &flakyAR{AR: ar, failAt: 5}

	_, err = IterativePredict(m, series, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fold 5")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	cfg := DefaultIterativeConfig()
	cfg.SkipFailedFolds = true
	cfg.Logger = &logger

	res, err := IterativePredict(m, series, cfg)
	require.NoError(t, err)
	assert.Equal(t, series.Len()-2+1-1, res.Forecast.Len())
	assert.Contains(t, buf.String(), "skipping failed fold")

	for i := 0; i < res.Forecast.Len(); i++ {
		assert.NotEqual(t, series.Time(5), res.Forecast.Time(i))
	}
}

func TestIterativePredictAllFoldsFail(t *testing.T) {
	ar, err := NewAR(1)
	require.NoError(t, err)
	m := &flakyAR{AR: ar, failAt: 2}

	cfg := DefaultIterativeConfig()
	cfg.SkipFailedFolds = true
	_, err = IterativePredict(m, mustSeries(t, []float64{1, 2}), cfg)
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
}

func TestIterativePredictName(t *testing.T) {
	series := mustSeries(t, ar1Values(10, 0.5))
	m, err := NewAR(1)
	require.NoError(t, err)

	res, err := IterativePredict(m, series, nil)
	require.NoError(t, err)
	assert.Equal(t, "iterative:AR(1)", res.Forecast.Name())

	cfg := DefaultIterativeConfig()
	cfg.Name = "backtest"
	res, err = IterativePredict(m, series, cfg)
	require.NoError(t, err)
	assert.Equal(t, "backtest", res.Forecast.Name())
}
