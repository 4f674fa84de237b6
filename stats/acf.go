// Package stats provides statistical transforms and diagnostics for time series.
package stats

import (
	"gonum.org/v1/gonum/stat"
)

// ACF calculates the sample autocorrelation function of values.
// Returns ACF values for lags 0 to maxLag, each lag-k autocovariance
// normalised by the lag-0 autocovariance. Returns nil for a constant
// series or a negative maxLag.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(values, nil)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}

	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf
}

// PACF calculates the Partial Autocorrelation Function using the Durbin-Levinson algorithm.
// Returns PACF values for lags 0 to maxLag, with PACF[0] = 1.
func PACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(values, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1.0

	// prev holds the order k-1 Durbin-Levinson coefficients, curr the order-k ones.
	prev := make([]float64, maxLag+1)
	curr := make([]float64, maxLag+1)
	prev[1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}

		if den == 0 {
			break
		}

		curr[k] = num / den
		pacf[k] = curr[k]
		for j := 1; j < k; j++ {
			curr[j] = prev[j] - curr[k]*prev[k-j]
		}
		prev, curr = curr, prev
	}

	return pacf
}
