// Package stats provides the differencing transform and autocorrelation
// diagnostics used by the forecasting models.
//
// # Differencing
//
// Difference and Integrate convert between the original and the differenced
// scale:
//
//	diff, _ := stats.Difference([]float64{1, 3, 6, 10}, 1) // [2 3 4]
//	back, _ := stats.Integrate(diff, []float64{1}, 1)      // [3 6 10]
//
// Integrate chains its seed through a growing buffer; for d > 1 each level is
// seeded by the last value of the level just integrated.
//
// # Autocorrelation Functions
//
//	acf := stats.ACF(values, 20)   // lags 0..20
//	pacf := stats.PACF(values, 20) // Durbin-Levinson
//
// # Residual Diagnostics
//
// Test residuals for remaining autocorrelation:
//
//	lb, err := stats.LjungBox(residuals, 10, p+q)
//	if err == nil && lb.Independent(0.05) {
//	    // residuals look like white noise
//	}
package stats
