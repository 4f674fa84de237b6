// Package goforecast provides univariate time series forecasting models.
//
// GoForecast fits a small family of classical models behind one contract:
// autoregressive (AR), Bayesian autoregressive, ARIMA, linear and ridge trend
// regression, and simple exponential smoothing. Every model is fitted on a
// timeseries.Series, predicts at arbitrary timestamps, and forecasts a horizon.
//
// # Features
//
//   - AR(p) by ordinary least squares with a pseudo-inverse fallback
//   - ARIMA(p,d,q) via differencing and a two-stage ARMA estimator
//   - Bayesian AR with a conjugate Normal-Inverse-Gamma update
//   - Linear and ridge trend models with prediction variances
//   - Simple exponential smoothing
//   - Expanding-window (walk-forward) prediction with optional uncertainty
//
// # Quick Start
//
//	series, _ := timeseries.New(values)
//	m, _ := model.NewARIMA(1, 1, 0)
//	if err := m.Fit(series); err != nil {
//	    log.Fatal(err)
//	}
//	forecast, _ := m.Forecast(10)
//
// Walk-forward prediction over the whole history:
//
//	cfg := model.DefaultIterativeConfig()
//	cfg.Horizon = 5
//	result, _ := model.IterativePredict(m, series, cfg)
//
// # Packages
//
//   - model: forecasting models and the iterative controller
//   - stats: differencing, autocorrelation and residual diagnostics
//   - timeseries: the Series type and CSV loading
//   - config: run configuration for the forecast command
//
// # Errors
//
// Failures wrap one of ErrInvalidArgument, ErrNotFitted or
// ErrNumericalInstability; test for them with errors.Is.
package goforecast
