package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/internal/linalg"
	"github.com/sartorproj/goforecast/timeseries"
)

// Inverse-Gamma hyperprior on the noise variance.
const (
	priorA0 = 0.001
	priorB0 = 0.001
)

// Prior is the Gaussian prior precision on the AR coefficients, intercept
// first. Precision, when set, is the diagonal of Λ and needs p+1 positive
// entries; otherwise Λ = Lambda·I.
type Prior struct {
	Lambda    float64
	Precision []float64
}

// BayesianAR is an AR(p) model with a conjugate Normal-Inverse-Gamma prior.
type BayesianAR struct {
	base
	p      int
	prior  Prior
	diag   []float64
	beta   []float64 // intercept first
	cov    *mat.SymDense
	sigma2 float64
	src    rand.Source
}

// BayesianOption configures a BayesianAR.
type BayesianOption func(*BayesianAR)

// WithSource sets the random source used to simulate predictive paths.
func WithSource(src rand.Source) BayesianOption {
	return func(m *BayesianAR) {
		m.src = src
	}
}

// WithSeed seeds the random source used to simulate predictive paths.
func WithSeed(seed uint64) BayesianOption {
	return WithSource(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewBayesianAR creates a Bayesian AR(p) model.
func NewBayesianAR(p int, prior Prior, opts ...BayesianOption) (*BayesianAR, error) {
	if p < 1 {
		return nil, fmt.Errorf("%w: AR order must be positive, got %d", goforecast.ErrInvalidArgument, p)
	}

	var diag []float64
	if prior.Precision != nil {
		if len(prior.Precision) != p+1 {
			return nil, fmt.Errorf("%w: prior precision needs %d entries, got %d",
				goforecast.ErrInvalidArgument, p+1, len(prior.Precision))
		}
		for i, v := range prior.Precision {
			if !(v > 0) {
				return nil, fmt.Errorf("%w: prior precision %d must be positive, got %v", goforecast.ErrInvalidArgument, i, v)
			}
		}
		diag = cloneFloats(prior.Precision)
	} else {
		if !(prior.Lambda > 0) {
			return nil, fmt.Errorf("%w: prior lambda must be positive, got %v", goforecast.ErrInvalidArgument, prior.Lambda)
		}
		diag = repeat(prior.Lambda, p+1)
	}

	m := &BayesianAR{p: p, prior: prior, diag: diag}
	WithSeed(1)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *BayesianAR) Kind() Kind { return KindBayesianAR }

func (m *BayesianAR) String() string { return fmt.Sprintf("BayesianAR(%d)", m.p) }

func (m *BayesianAR) MinTrainSize() int { return m.p + 1 }

func (m *BayesianAR) SlidingWindow() int { return 0 }

// Fit computes the posterior over the coefficients and the noise variance.
//
// Posterior precision is XᵀX + Λ and the posterior mean solves it against
// Xᵀy. The noise variance follows an Inverse-Gamma update with
// a = a₀ + n/2 and b = b₀ + ½Σe², where n counts the N-p regression rows
// rather than the N observations; its posterior mean b/(a-1) is used when
// a > 1 and the posterior mode b/(a+1) otherwise. The posterior covariance
// is σ²·(XᵀX + Λ)⁻¹.
func (m *BayesianAR) Fit(series *timeseries.Series) error {
	m.reset()
	if err := checkLength(m, series); err != nil {
		return err
	}

	y := series.Values()
	x, target := lagDesign(y, m.p)
	beta, precisionInv, pinv, err := linalg.SolveNormal(x, target, m.diag)
	if err != nil {
		return fmt.Errorf("solving posterior mean: %w", err)
	}

	coeffs := armaCoeffs{intercept: beta.AtVec(0), phi: make([]float64, m.p)}
	for i := range coeffs.phi {
		coeffs.phi[i] = beta.AtVec(i + 1)
	}
	fitted, residuals := coeffs.filter(y, m.p, nil)

	sse := 0.0
	for _, r := range validValues(residuals) {
		sse += r * r
	}
	n, _ := x.Dims()
	aPost := priorA0 + float64(n)/2
	bPost := priorB0 + sse/2
	sigma2 := bPost / (aPost + 1)
	if aPost > 1 {
		sigma2 = bPost / (aPost - 1)
	}

	cov := mat.NewSymDense(m.p+1, nil)
	cov.ScaleSym(sigma2, precisionInv)
	cov = linalg.Symmetrize(cov)

	m.beta = make([]float64, m.p+1)
	for i := range m.beta {
		m.beta[i] = beta.AtVec(i)
	}
	m.cov = cov
	m.sigma2 = sigma2

	m.result.Params[ParamIntercept] = coeffs.intercept
	for i, phi := range coeffs.phi {
		m.result.Params[PhiName(i+1)] = phi
	}
	m.result.Params[ParamSigma2] = sigma2
	m.result.Params[ParamAPost] = aPost
	m.result.Params[ParamBPost] = bPost
	if m.prior.Precision == nil {
		m.result.Params[ParamLambda] = m.prior.Lambda
	}
	m.result.Covariance = cov
	m.result.Fitted = fitted
	m.result.Residuals = residuals
	m.result.PseudoInverse = pinv
	m.result.IsFitted = true
	m.train = series
	return nil
}

// regressors returns [1, lag1, ..., lagp] from the end of buf.
func (m *BayesianAR) regressors(buf []float64) *mat.VecDense {
	x := mat.NewVecDense(m.p+1, nil)
	x.SetVec(0, 1)
	for i := 1; i <= m.p; i++ {
		x.SetVec(i, buf[len(buf)-i])
	}
	return x
}

func (m *BayesianAR) mean(x *mat.VecDense) float64 {
	return mat.Dot(x, mat.NewVecDense(len(m.beta), m.beta))
}

// Predict returns the one-step-ahead posterior mean at every requested
// timestamp. Use PredictWithUncertainty or Forecast for a multi-step path.
func (m *BayesianAR) Predict(timestamps []time.Time) (*timeseries.Series, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}
	next := m.mean(m.regressors(m.train.Values()))
	return newSeries(timestamps, repeat(next, len(timestamps)), m.String())
}

// PredictWithUncertainty simulates one step per timestamp. Each step reports
// the posterior mean, the predictive variance σ² + xᵀΣx, and a draw from
// N(mean, variance) in Samples. The lag buffer advances with the mean, so
// Forecast and the Forecast field of the result agree.
func (m *BayesianAR) PredictWithUncertainty(timestamps []time.Time) (*PredictionResult, error) {
	if err := m.checkPredict(timestamps); err != nil {
		return nil, err
	}

	buf := m.train.Values()
	means := make([]float64, len(timestamps))
	variances := make([]float64, len(timestamps))
	samples := make([]float64, len(timestamps))

	for i := range timestamps {
		x := m.regressors(buf)
		mu := m.mean(x)
		v := math.Max(0, m.sigma2+mat.Inner(x, m.cov, x))

		noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(v), Src: m.src}
		means[i] = mu
		variances[i] = v
		samples[i] = mu + noise.Rand()
		buf = append(buf, mu)
	}

	forecast, err := newSeries(timestamps, means, m.String())
	if err != nil {
		return nil, err
	}
	return &PredictionResult{Forecast: forecast, Variance: variances, Samples: samples}, nil
}

// Forecast runs the posterior-mean AR recursion for horizon steps.
func (m *BayesianAR) Forecast(horizon int) (*timeseries.Series, error) {
	if err := m.checkForecast(horizon); err != nil {
		return nil, err
	}
	coeffs := armaCoeffs{intercept: m.beta[0], phi: m.beta[1:]}
	values := coeffs.recurse(m.train.Values(), nil, horizon)
	return newSeries(m.train.NextTimestamps(horizon), values, m.String())
}
