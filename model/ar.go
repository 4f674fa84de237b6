package model

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/internal/linalg"
	"github.com/sartorproj/goforecast/timeseries"
)

// armaCoeffs are the coefficients of
//
//	y[t] = c + Σ φ[i]·y[t-i] + Σ θ[j]·e[t-j]
type armaCoeffs struct {
	intercept float64
	phi       []float64
	theta     []float64
}

// filter computes one-step fitted values and residuals over y. Positions
// before start are undefined (NaN); their error terms are taken from seed.
func (c *armaCoeffs) filter(y []float64, start int, seed func(t int) float64) (fitted, residuals []float64) {
	n := len(y)
	fitted = nanSlice(n)
	residuals = nanSlice(n)
	errs := make([]float64, n)

	for t := 0; t < n; t++ {
		if t < start {
			if seed != nil {
				errs[t] = seed(t)
			}
			continue
		}

		v := c.intercept
		for i, phi := range c.phi {
			v += phi * y[t-i-1]
		}
		for j, theta := range c.theta {
			if t-j-1 >= 0 {
				v += theta * errs[t-j-1]
			}
		}

		fitted[t] = v
		errs[t] = y[t] - v
		residuals[t] = errs[t]
	}
	return fitted, residuals
}

// recurse produces horizon forecasts on the scale of history. The error
// queue starts from the last q valid residuals and is shifted with a zero
// appended after every step, so step h only sees errors from before the
// forecast origin.
func (c *armaCoeffs) recurse(history, residuals []float64, horizon int) []float64 {
	p, q := len(c.phi), len(c.theta)

	keep := max(p, q)
	if keep > len(history) {
		keep = len(history)
	}
	buf := make([]float64, keep, keep+horizon)
	copy(buf, history[len(history)-keep:])
	errs := lastValid(residuals, q)

	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		v := c.intercept
		for i := 1; i <= p; i++ {
			v += c.phi[i-1] * buf[len(buf)-i]
		}
		for j := 1; j <= q; j++ {
			v += c.theta[j-1] * errs[len(errs)-j]
		}

		buf = append(buf, v)
		out[h] = v
		if q > 0 {
			errs = append(errs[1:], 0)
		}
	}
	return out
}

// lastValid returns the last k non-NaN values of s in order, zero-padded at
// the front when fewer are available.
func lastValid(s []float64, k int) []float64 {
	out := make([]float64, k)
	idx := k - 1
	for i := len(s) - 1; i >= 0 && idx >= 0; i-- {
		if math.IsNaN(s[i]) {
			continue
		}
		out[idx] = s[i]
		idx--
	}
	return out
}

func validValues(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// lagDesign builds the AR regression for order p: one row per t >= p holding
// [1, y[t-1], ..., y[t-p]] and the target y[t].
func lagDesign(y []float64, p int) (*mat.Dense, *mat.VecDense) {
	rows := len(y) - p
	x := mat.NewDense(rows, p+1, nil)
	target := mat.NewVecDense(rows, nil)
	for r := 0; r < rows; r++ {
		t := r + p
		x.Set(r, 0, 1)
		for i := 1; i <= p; i++ {
			x.Set(r, i, y[t-i])
		}
		target.SetVec(r, y[t])
	}
	return x, target
}

// olsAR is the result of an AR(p) least-squares fit.
type olsAR struct {
	coeffs    armaCoeffs
	fitted    []float64
	residuals []float64
	gramInv   *mat.SymDense
	pinv      bool
}

// fitOLSAR regresses y[t] on an intercept and p lags. A rank-deficient Gram
// matrix is solved through its pseudo-inverse.
func fitOLSAR(y []float64, p int) (*olsAR, error) {
	if len(y) <= p {
		return nil, fmt.Errorf("%w: AR(%d) needs more than %d observations, got %d",
			goforecast.ErrInvalidArgument, p, p, len(y))
	}

	x, target := lagDesign(y, p)
	beta, gramInv, pinv, err := linalg.SolveNormal(x, target, nil)
	if err != nil {
		return nil, fmt.Errorf("solving AR(%d) normal equations: %w", p, err)
	}

	coeffs := armaCoeffs{intercept: beta.AtVec(0), phi: make([]float64, p)}
	for i := range coeffs.phi {
		coeffs.phi[i] = beta.AtVec(i + 1)
	}
	fitted, residuals := coeffs.filter(y, p, nil)

	return &olsAR{
		coeffs:    coeffs,
		fitted:    fitted,
		residuals: residuals,
		gramInv:   gramInv,
		pinv:      pinv,
	}, nil
}

// residualVariance divides the residual sum of squares by the residual
// degrees of freedom when positive, by the residual count otherwise.
func residualVariance(residuals []float64, nParams int) float64 {
	valid := validValues(residuals)
	if len(valid) == 0 {
		return 0
	}
	sse := 0.0
	for _, r := range valid {
		sse += r * r
	}
	if len(valid) > nParams {
		return sse / float64(len(valid)-nParams)
	}
	return sse / float64(len(valid))
}

// AR is an autoregressive model of order p estimated by ordinary least
// squares with an intercept.
type AR struct {
	base
	p      int
	coeffs armaCoeffs
}

// NewAR creates an AR(p) model. p must be positive.
func NewAR(p int) (*AR, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: AR order must be positive, got %d", goforecast.ErrInvalidArgument, p)
	}
	return &AR{p: p}, nil
}

func (m *AR) Kind() Kind { return KindAR }

func (m *AR) String() string { return fmt.Sprintf("AR(%d)", m.p) }

// Order returns p.
func (m *AR) Order() int { return m.p }

func (m *AR) MinTrainSize() int { return m.p + 1 }

func (m *AR) SlidingWindow() int { return 0 }

// Fit estimates the intercept and AR coefficients. The first p fitted values
// and residuals are NaN.
func (m *AR) Fit(series *timeseries.Series) error {
	m.reset()
	if err := checkLength(m, series); err != nil {
		return err
	}

	fit, err := fitOLSAR(series.Values(), m.p)
	if err != nil {
		return err
	}

	sigma2 := residualVariance(fit.residuals, m.p+1)
	cov := mat.NewSymDense(m.p+1, nil)
	cov.ScaleSym(sigma2, fit.gramInv)

	m.coeffs = fit.coeffs
	m.result.Params[ParamIntercept] = fit.coeffs.intercept
	for i, phi := range fit.coeffs.phi {
		m.result.Params[PhiName(i+1)] = phi
	}
	m.result.Params[ParamSigma2] = sigma2
	m.result.Covariance = cov
	m.result.Fitted = fit.fitted
	m.result.Residuals = fit.residuals
	m.result.PseudoInverse = fit.pinv
	m.result.IsFitted = true
	m.train = series
	return nil
}

// Predict returns the one-step-ahead forecast from the end of the training
// series at every requested timestamp. It is not a multi-step forecast: use
// Forecast for that.
func (m *AR) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}
	next := m.coeffs.recurse(m.train.Values(), nil, 1)[0]
	return newSeries(timestamps, repeat(next, len(timestamps)), m.String())
}

// PredictWithUncertainty returns Predict without variances.
func (m *AR) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	return pointResult(m.Predict(timestamps))
}

// Forecast runs the AR recursion for horizon steps.
func (m *AR) Forecast(horizon int) (*timeseries.Series, error) {
	if err := m.checkForecast(horizon); err != nil {
		return nil, err
	}
	values := m.coeffs.recurse(m.train.Values(), nil, horizon)
	return newSeries(m.train.NextTimestamps(horizon), values, m.String())
}
