package model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

// ARIMA is an AutoRegressive Integrated Moving Average model.
//
// Estimation is a documented approximation rather than maximum likelihood:
// the series is differenced d times, an AR(p) part is fitted by least squares
// and the MA(q) part is taken from the autocorrelation of the AR residuals.
// With p = 0 the MA coefficients come from the method of moments on the
// differenced series itself.
type ARIMA struct {
	base
	order     Order
	coeffs    armaCoeffs
	original  []float64
	diff      []float64
	residuals []float64 // on the differenced scale
}

// NewARIMA creates an ARIMA(p,d,q) model. Orders must be non-negative and at
// least one of p and q positive.
func NewARIMA(p, d, q int) (*ARIMA, error) {
	if p < 0 || d < 0 || q < 0 {
		return nil, fmt.Errorf("%w: ARIMA orders must be non-negative, got (%d,%d,%d)", goforecast.ErrInvalidArgument, p, d, q)
	}
	if p == 0 && q == 0 {
		return nil, fmt.Errorf("%w: ARIMA needs p > 0 or q > 0", goforecast.ErrInvalidArgument)
	}
	return &ARIMA{order: Order{P: p, D: d, Q: q}}, nil
}

func (m *ARIMA) Kind() Kind { return KindARIMA }

func (m *ARIMA) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", m.order.P, m.order.D, m.order.Q)
}

// Order returns the model order.
func (m *ARIMA) Order() Order { return m.order }

func (m *ARIMA) MinTrainSize() int {
	return 3*max(m.order.P, m.order.Q) + m.order.D
}

func (m *ARIMA) SlidingWindow() int { return 0 }

// Fit differences the series and estimates the ARMA(p,q) part on the result.
// Fitted values are one-step-ahead predictions on the original scale.
func (m *ARIMA) Fit(series *timeseries.Series) error {
	m.reset()
	if err := checkLength(m, series); err != nil {
		return err
	}

	p, d, q := m.order.P, m.order.D, m.order.Q
	y := series.Values()
	diff, err := stats.Difference(y, d)
	if err != nil {
		return err
	}

	var (
		coeffs    armaCoeffs
		residuals []float64
	)
	if p > 0 {
		ar, err := fitOLSAR(diff, p)
		if err != nil {
			return err
		}
		coeffs = ar.coeffs
		coeffs.theta = residualACF(ar.residuals, q)
		_, residuals = coeffs.filter(diff, p, nil)
		m.result.PseudoInverse = ar.pinv
	} else {
		coeffs = estimateMA(diff, q)
		mu := coeffs.intercept
		_, residuals = coeffs.filter(diff, q, func(t int) float64 { return diff[t] - mu })
	}

	m.coeffs = coeffs
	m.original = y
	m.diff = diff
	m.residuals = residuals

	// y[t] - e[t] is the one-step prediction on the original scale because the
	// d-th difference at t differs from y[t] only by past observations.
	fitted := nanSlice(len(y))
	origResiduals := nanSlice(len(y))
	for t, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		fitted[t+d] = y[t+d] - r
		origResiduals[t+d] = r
	}

	m.result.Params[ParamIntercept] = coeffs.intercept
	for i, phi := range coeffs.phi {
		m.result.Params[PhiName(i+1)] = phi
	}
	for j, theta := range coeffs.theta {
		m.result.Params[ThetaName(j+1)] = theta
	}
	m.result.Params[ParamSigma2] = residualVariance(residuals, p+q+1)
	m.result.Fitted = fitted
	m.result.Residuals = origResiduals
	m.result.Differenced = cloneFloats(diff)
	m.result.IsFitted = true
	m.train = series
	return nil
}

// estimateMA fits a pure MA(q) by the method of moments. For q = 1,
// θ = (-1+√(1-4ρ₁²))/(2ρ₁) when 0 < |ρ₁| < 0.5 and θ = ρ₁ otherwise; for
// q > 1 the sample autocorrelations are used directly.
func estimateMA(y []float64, q int) armaCoeffs {
	coeffs := armaCoeffs{
		intercept: stat.Mean(y, nil),
		theta:     make([]float64, q),
	}

	acf := stats.ACF(y, q)
	if acf == nil {
		return coeffs
	}

	if q == 1 {
		rho := acf[1]
		if rho != 0 && math.Abs(rho) < 0.5 {
			// Root of the e[t] - θ·e[t-1] parameterisation; the filter adds +θ·e.
			coeffs.theta[0] = (-1 + math.Sqrt(1-4*rho*rho)) / (2 * rho)
		} else {
			coeffs.theta[0] = rho
		}
		return coeffs
	}

	for j := 1; j < len(acf); j++ {
		coeffs.theta[j-1] = acf[j]
	}
	return coeffs
}

// residualACF returns the lag 1..q autocorrelations of the valid residuals,
// used as MA coefficients in the second stage of the ARMA estimator.
func residualACF(residuals []float64, q int) []float64 {
	if q == 0 {
		return nil
	}
	theta := make([]float64, q)
	acf := stats.ACF(validValues(residuals), q)
	for j := 1; j < len(acf); j++ {
		theta[j-1] = acf[j]
	}
	return theta
}

// Predict returns the one-step-ahead forecast, integrated back to the
// original scale, at every requested timestamp. It is not a multi-step
// forecast: use Forecast for that.
func (m *ARIMA) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}
	next, err := m.forecast(1)
	if err != nil {
		return nil, err
	}
	return newSeries(timestamps, repeat(next[0], len(timestamps)), m.String())
}

// PredictWithUncertainty returns Predict without variances.
func (m *ARIMA) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	return pointResult(m.Predict(timestamps))
}

// Forecast generates forecasts for the specified number of steps ahead.
func (m *ARIMA) Forecast(horizon int) (*timeseries.Series, error) {
	if err := m.checkForecast(horizon); err != nil {
		return nil, err
	}
	values, err := m.forecast(horizon)
	if err != nil {
		return nil, err
	}
	return newSeries(m.train.NextTimestamps(horizon), values, m.String())
}

func (m *ARIMA) forecast(horizon int) ([]float64, error) {
	values := m.coeffs.recurse(m.diff, m.residuals, horizon)
	return stats.Integrate(values, m.original, m.order.D)
}
