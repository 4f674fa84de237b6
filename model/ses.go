package model

import (
	"fmt"
	"time"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/timeseries"
)

// SES is simple exponential smoothing with a fixed smoothing factor α.
type SES struct {
	base
	alpha float64
	level float64
}

// NewSES creates an SES model. α must lie strictly between 0 and 1.
func NewSES(alpha float64) (*SES, error) {
	if !(alpha > 0 && alpha < 1) {
		return nil, fmt.Errorf("%w: SES alpha must lie in (0,1), got %v", goforecast.ErrInvalidArgument, alpha)
	}
	return &SES{alpha: alpha}, nil
}

func (m *SES) Kind() Kind { return KindSES }

func (m *SES) String() string { return fmt.Sprintf("SES(alpha=%g)", m.alpha) }

// Alpha returns the smoothing factor.
func (m *SES) Alpha() float64 { return m.alpha }

func (m *SES) MinTrainSize() int { return 2 }

func (m *SES) SlidingWindow() int { return 0 }

// Fit runs the level recursion level[0] = y[0],
// level[t] = α·y[t-1] + (1-α)·level[t-1]. Fitted values are the levels; the
// forecast level is the recursion carried one step past the last observation.
func (m *SES) Fit(series *timeseries.Series) error {
	m.reset()
	if err := checkLength(m, series); err != nil {
		return err
	}

	y := series.Values()
	fitted := make([]float64, len(y))
	residuals := make([]float64, len(y))
	fitted[0] = y[0]
	for t := 1; t < len(y); t++ {
		fitted[t] = m.alpha*y[t-1] + (1-m.alpha)*fitted[t-1]
	}
	for t := range y {
		residuals[t] = y[t] - fitted[t]
	}
	last := len(y) - 1
	m.level = m.alpha*y[last] + (1-m.alpha)*fitted[last]

	m.result.Params[ParamAlpha] = m.alpha
	m.result.Params[ParamLevel] = m.level
	m.result.Params[ParamSigma2] = residualVariance(residuals[1:], 1)
	m.result.Fitted = fitted
	m.result.Residuals = residuals
	m.result.IsFitted = true
	m.train = series
	return nil
}

// Predict returns the final level at every timestamp.
func (m *SES) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}
	return newSeries(timestamps, repeat(m.level, len(timestamps)), m.String())
}

// PredictWithUncertainty returns Predict without variances.
func (m *SES) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	return pointResult(m.Predict(timestamps))
}

// Forecast is flat at the final level for every step.
func (m *SES) Forecast(horizon int) (*timeseries.Series, error) {
	if err := m.checkForecast(horizon); err != nil {
		return nil, err
	}
	return m.Predict(m.train.NextTimestamps(horizon))
}
