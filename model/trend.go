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

// trend fits y = a + b·x where x counts steps since the first training
// timestamp, a step being the last observed timestamp delta.
type trend struct {
	base
	window int

	intercept    float64
	slope        float64
	varIntercept float64
	varSlope     float64
	covariance   float64
	origin       time.Time
	step         time.Duration
}

func (m *trend) MinTrainSize() int { return max(2, m.window) }

func (m *trend) SlidingWindow() int { return m.window }

func (m *trend) index(t time.Time) float64 {
	return t.Sub(m.origin).Seconds() / m.step.Seconds()
}

// fit estimates the trend with penalty λ on the slope. The intercept is
// never penalised; λ = 0 is ordinary least squares.
func (m *trend) fit(self Model, series *timeseries.Series, lambda float64) error {
	m.reset()
	if err := checkLength(self, series); err != nil {
		return err
	}
	if m.window > 0 {
		series = series.Tail(m.window)
	}

	n := series.Len()
	m.origin = series.Time(0)
	m.step = series.Step()

	x := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, series.Values())
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		x.Set(i, 1, m.index(series.Time(i)))
	}

	beta, systemInv, pinv, err := linalg.SolveNormal(x, y, []float64{0, lambda})
	if err != nil {
		return fmt.Errorf("solving trend normal equations: %w", err)
	}
	gramInv := systemInv
	if lambda != 0 {
		if gramInv, _, err = linalg.InverseSym(linalg.Gram(x)); err != nil {
			return fmt.Errorf("inverting trend gram matrix: %w", err)
		}
	}

	m.intercept = beta.AtVec(0)
	m.slope = beta.AtVec(1)

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	sse := 0.0
	for i := 0; i < n; i++ {
		fitted[i] = m.intercept + m.slope*x.At(i, 1)
		residuals[i] = y.AtVec(i) - fitted[i]
		sse += residuals[i] * residuals[i]
	}

	df := n - 2
	if df <= 0 {
		df = n - 1
	}
	sigma2 := sse / float64(df)

	cov := mat.NewSymDense(2, nil)
	cov.ScaleSym(sigma2, gramInv)
	m.varIntercept = cov.At(0, 0)
	m.varSlope = cov.At(1, 1)
	m.covariance = cov.At(0, 1)

	m.result.Params[ParamIntercept] = m.intercept
	m.result.Params[ParamSlope] = m.slope
	m.result.Params[ParamSigma2] = sigma2
	m.result.Params[ParamVarIntercept] = m.varIntercept
	m.result.Params[ParamVarSlope] = m.varSlope
	m.result.Params[ParamCovInterceptSlope] = m.covariance
	m.result.Covariance = cov
	m.result.Fitted = fitted
	m.result.Residuals = residuals
	m.result.PseudoInverse = pinv
	m.result.IsFitted = true
	m.train = series
	return nil
}

func (m *trend) predict(name string, timestamps []time.Time) (*PredictionResult, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}

	values := make([]float64, len(timestamps))
	variances := make([]float64, len(timestamps))
	for i, t := range timestamps {
		x := m.index(t)
		values[i] = m.intercept + m.slope*x
		variances[i] = math.Max(0, m.varIntercept+2*x*m.covariance+x*x*m.varSlope)
	}

	forecast, err := newSeries(timestamps, values, name)
	if err != nil {
		return nil, err
	}
	return &PredictionResult{Forecast: forecast, Variance: variances}, nil
}

func (m *trend) forecast(self Model, horizon int) (*timeseries.Series, error) {
	if err := m.checkForecast(horizon); err != nil {
		return nil, err
	}
	return self.Predict(m.train.NextTimestamps(horizon))
}

// Linear is an ordinary least squares trend model, optionally restricted to
// the most recent window observations.
type Linear struct {
	trend
}

// NewLinear creates a linear trend model. A window of 0 uses all data.
func NewLinear(window int) (*Linear, error) {
	if window < 0 {
		return nil, fmt.Errorf("%w: sliding window must be non-negative, got %d", goforecast.ErrInvalidArgument, window)
	}
	return &Linear{trend{window: window}}, nil
}

func (m *Linear) Kind() Kind { return KindLinear }

func (m *Linear) String() string {
	if m.window > 0 {
		return fmt.Sprintf("Linear(window=%d)", m.window)
	}
	return "Linear"
}

// Fit estimates intercept, slope and their covariance σ²·(XᵀX)⁻¹.
func (m *Linear) Fit(series *timeseries.Series) error {
	return m.fit(m, series, 0)
}

// Predict evaluates the trend line at the given timestamps.
func (m *Linear) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	res, err := m.predict(m.String(), timestamps)
	if err != nil {
		return nil, err
	}
	return res.Forecast, nil
}

// PredictWithUncertainty adds Var(a) + 2x·Cov(a,b) + x²·Var(b) per point.
func (m *Linear) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	return m.predict(m.String(), timestamps)
}

// Forecast extends the trend line horizon steps past the training data.
func (m *Linear) Forecast(horizon int) (*timeseries.Series, error) {
	return m.forecast(m, horizon)
}

// Ridge is a trend model with an L2 penalty λ on the slope.
type Ridge struct {
	trend
	lambda float64
}

// NewRidge creates a ridge trend model. λ must be non-negative; λ = 0 gives
// the same coefficients as Linear.
func NewRidge(lambda float64, window int) (*Ridge, error) {
	if !(lambda >= 0) || math.IsInf(lambda, 0) {
		return nil, fmt.Errorf("%w: ridge lambda must be a non-negative number, got %v", goforecast.ErrInvalidArgument, lambda)
	}
	if window < 0 {
		return nil, fmt.Errorf("%w: sliding window must be non-negative, got %d", goforecast.ErrInvalidArgument, window)
	}
	return &Ridge{trend: trend{window: window}, lambda: lambda}, nil
}

func (m *Ridge) Kind() Kind { return KindRidge }

func (m *Ridge) String() string {
	if m.window > 0 {
		return fmt.Sprintf("Ridge(lambda=%g,window=%d)", m.lambda, m.window)
	}
	return fmt.Sprintf("Ridge(lambda=%g)", m.lambda)
}

// Lambda returns the penalty.
func (m *Ridge) Lambda() float64 { return m.lambda }

// Fit solves (XᵀX + λD)β = Xᵀy with D the identity minus its intercept
// entry. Parameter covariance is σ²·(XᵀX)⁻¹.
func (m *Ridge) Fit(series *timeseries.Series) error {
	if err := m.fit(m, series, m.lambda); err != nil {
		return err
	}
	m.result.Params[ParamLambda] = m.lambda
	return nil
}

// Predict evaluates the penalised trend line at the given timestamps.
func (m *Ridge) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	res, err := m.predict(m.String(), timestamps)
	if err != nil {
		return nil, err
	}
	return res.Forecast, nil
}

// PredictWithUncertainty adds Var(a) + 2x·Cov(a,b) + x²·Var(b) per point.
func (m *Ridge) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	return m.predict(m.String(), timestamps)
}

// Forecast extends the trend line horizon steps past the training data.
func (m *Ridge) Forecast(horizon int) (*timeseries.Series, error) {
	return m.forecast(m, horizon)
}
