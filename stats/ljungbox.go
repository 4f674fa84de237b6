package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goforecast"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int // Degrees of freedom
}

// Independent reports whether the null hypothesis of no autocorrelation
// survives at the given significance level.
func (r *LjungBoxResult) Independent(alpha float64) bool {
	return r.PValue >= alpha
}

// LjungBox performs the Ljung-Box test for autocorrelation in residuals.
// The null hypothesis is that there is no autocorrelation up to the given lag.
// fitDF is the number of estimated ARMA coefficients and is subtracted from
// the degrees of freedom.
func LjungBox(residuals []float64, lags, fitDF int) (*LjungBoxResult, error) {
	n := len(residuals)
	if lags < 1 {
		return nil, fmt.Errorf("%w: ljung-box needs at least one lag", goforecast.ErrInvalidArgument)
	}
	if n < 3 {
		return nil, fmt.Errorf("%w: ljung-box needs at least 3 residuals, got %d", goforecast.ErrInvalidArgument, n)
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(residuals, lags)
	if acf == nil {
		return nil, fmt.Errorf("%w: residuals are constant", goforecast.ErrInvalidArgument)
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += (acf[k] * acf[k]) / float64(n-k)
	}
	q *= float64(n * (n + 2))

	dof := lags - fitDF
	if dof < 1 {
		dof = 1
	}

	chi := distuv.ChiSquared{K: float64(dof)}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}, nil
}
