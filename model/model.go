// Package model implements the forecasting models and the iterative
// expanding-window controller.
package model

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/timeseries"
)

// Kind identifies a model family.
type Kind int

const (
	KindAR Kind = iota + 1
	KindBayesianAR
	KindARIMA
	KindLinear
	KindRidge
	KindSES
)

func (k Kind) String() string {
	switch k {
	case KindAR:
		return "ar"
	case KindBayesianAR:
		return "bayesian_ar"
	case KindARIMA:
		return "arima"
	case KindLinear:
		return "linear"
	case KindRidge:
		return "ridge"
	case KindSES:
		return "ses"
	default:
		return "unknown"
	}
}

// Autoregressive reports whether predictions of this kind may be fed back
// into its own training data. Trend models are excluded: their predictions
// lie exactly on the fitted line and make the refit singular.
func (k Kind) Autoregressive() bool {
	return k == KindAR || k == KindBayesianAR || k == KindARIMA
}

// SupportsUncertainty reports whether PredictWithUncertainty yields variances.
func (k Kind) SupportsUncertainty() bool {
	return k == KindBayesianAR || k == KindLinear || k == KindRidge
}

// Model is the contract shared by every forecasting model. The set of
// implementations is closed: AR, BayesianAR, ARIMA, Linear, Ridge and SES.
//
// A model owns one FitResult, overwritten wholesale by each call to Fit.
// Models are not safe for concurrent use.
type Model interface {
	// Kind returns the model family.
	Kind() Kind
	// String returns a short description such as "ARIMA(1,1,0)".
	String() string
	// Fit estimates the model on series, discarding any previous fit.
	Fit(series *timeseries.Series) error
	// Predict returns point predictions at the given timestamps.
	Predict(timestamps []time.Time) (*timeseries.Series, error)
	// PredictWithUncertainty is Predict plus a variance per timestamp for the
	// kinds that support it. Other kinds return a nil Variance.
	PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error)
	// Forecast runs the multi-step recursion for horizon steps past the end
	// of the training series.
	Forecast(horizon int) (*timeseries.Series, error)
	// MinTrainSize is the smallest training series Fit accepts.
	MinTrainSize() int
	// SlidingWindow is the training window the model is restricted to, or 0
	// for an expanding window.
	SlidingWindow() int
	// Result returns a copy of the current fit.
	Result() *FitResult

	sealed()
}

// Parameter names stored in FitResult.Params.
const (
	ParamIntercept         = "intercept"
	ParamSlope             = "slope"
	ParamSigma2            = "sigma2"
	ParamVarIntercept      = "var_intercept"
	ParamVarSlope          = "var_slope"
	ParamCovInterceptSlope = "cov_intercept_slope"
	ParamLambda            = "lambda"
	ParamAlpha             = "alpha"
	ParamLevel             = "level"
	ParamAPost             = "a_post"
	ParamBPost             = "b_post"
	ParamMean              = "mean"
)

// PhiName returns the parameter name of the i-th AR coefficient (1-based).
func PhiName(i int) string {
	return "phi." + strconv.Itoa(i)
}

// ThetaName returns the parameter name of the j-th MA coefficient (1-based).
func ThetaName(j int) string {
	return "theta." + strconv.Itoa(j)
}

// FitResult holds everything a fit produces. Fitted and Residuals are aligned
// with the training series; NaN marks positions where the lag order leaves
// the value undefined.
type FitResult struct {
	Params      map[string]float64
	Covariance  *mat.SymDense // parameter or posterior covariance, when estimated
	Fitted      []float64
	Residuals   []float64
	Differenced []float64 // training series on the differenced scale (ARIMA)
	IsFitted    bool
	// PseudoInverse is set when the normal equations were rank deficient and
	// were solved through the pseudo-inverse.
	PseudoInverse bool
}

// Param returns a named parameter.
func (r *FitResult) Param(name string) (float64, bool) {
	v, ok := r.Params[name]
	return v, ok
}

func (r *FitResult) clone() *FitResult {
	out := &FitResult{
		Params:        make(map[string]float64, len(r.Params)),
		Fitted:        cloneFloats(r.Fitted),
		Residuals:     cloneFloats(r.Residuals),
		Differenced:   cloneFloats(r.Differenced),
		IsFitted:      r.IsFitted,
		PseudoInverse: r.PseudoInverse,
	}
	for k, v := range r.Params {
		out.Params[k] = v
	}
	if r.Covariance != nil {
		out.Covariance = mat.NewSymDense(r.Covariance.SymmetricDim(), nil)
		out.Covariance.CopySym(r.Covariance)
	}
	return out
}

// PredictionResult pairs a point forecast with an optional variance sequence
// of the same length.
type PredictionResult struct {
	Forecast *timeseries.Series
	// Variance holds one non-negative predictive variance per forecast point,
	// or nil when the model does not estimate uncertainty.
	Variance []float64
	// Samples is one simulated path (BayesianAR only).
	Samples []float64
}

// HasVariance reports whether the result carries variances.
func (p *PredictionResult) HasVariance() bool {
	return p.Variance != nil
}

// Interval returns symmetric normal prediction bounds at the given coverage
// level, e.g. 0.95.
func (p *PredictionResult) Interval(level float64) (lower, upper []float64, err error) {
	if !p.HasVariance() {
		return nil, nil, fmt.Errorf("%w: prediction carries no variance", goforecast.ErrInvalidArgument)
	}
	if level <= 0 || level >= 1 {
		return nil, nil, fmt.Errorf("%w: interval level %v outside (0,1)", goforecast.ErrInvalidArgument, level)
	}

	z := distuv.UnitNormal.Quantile(0.5 + level/2)
	values := p.Forecast.Values()
	lower = make([]float64, len(values))
	upper = make([]float64, len(values))
	for i, v := range values {
		half := z * math.Sqrt(p.Variance[i])
		lower[i] = v - half
		upper[i] = v + half
	}
	return lower, upper, nil
}

// base carries the state every model shares: its FitResult and the series it
// was trained on.
type base struct {
	result FitResult
	train  *timeseries.Series
}

func (b *base) sealed() {}

func (b *base) Result() *FitResult {
	return b.result.clone()
}

// reset discards the previous fit before a new one starts.
func (b *base) reset() {
	b.result = FitResult{Params: make(map[string]float64)}
	b.train = nil
}

func (b *base) checkFitted() error {
	if !b.result.IsFitted {
		return goforecast.ErrNotFitted
	}
	return nil
}

func (b *base) checkForecast(horizon int) error {
	if err := b.checkFitted(); err != nil {
		return err
	}
	if horizon < 1 {
		return fmt.Errorf("%w: horizon must be at least 1, got %d", goforecast.ErrInvalidArgument, horizon)
	}
	return nil
}

func (b *base) checkPredict(timestamps []time.Time) error {
	if err := b.checkFitted(); err != nil {
		return err
	}
	if len(timestamps) == 0 {
		return fmt.Errorf("%w: no timestamps to predict", goforecast.ErrInvalidArgument)
	}
	return nil
}

func checkLength(m Model, series *timeseries.Series) error {
	if series == nil {
		return fmt.Errorf("%w: nil series", goforecast.ErrInvalidArgument)
	}
	if series.Len() < m.MinTrainSize() {
		return fmt.Errorf("%w: %s needs at least %d observations, got %d",
			goforecast.ErrInvalidArgument, m, m.MinTrainSize(), series.Len())
	}
	return nil
}

func newSeries(timestamps []time.Time, values []float64, name string) (*timeseries.Series, error) {
	s, err := timeseries.NewWithTimestamps(timestamps, values)
	if err != nil {
		return nil, err
	}
	return s.WithName(name), nil
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func cloneFloats(s []float64) []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

func nanSlice(n int) []float64 {
	return repeat(math.NaN(), n)
}

// pointResult wraps point predictions for models without uncertainty.
func pointResult(s *timeseries.Series, err error) (*PredictionResult, error) {
	if err != nil {
		return nil, err
	}
	return &PredictionResult{Forecast: s}, nil
}
