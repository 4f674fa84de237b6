// Package model implements univariate forecasting models behind one contract.
//
// The model family is closed:
//   - AR(p): ordinary least squares with an intercept
//   - BayesianAR(p): conjugate Normal-Inverse-Gamma regression on the AR design
//   - ARIMA(p,d,q): differencing plus a two-stage ARMA estimator
//   - Linear, Ridge: trend regression on a time index
//   - SES: simple exponential smoothing
//
// # Basic Usage
//
//	m, err := model.NewARIMA(1, 1, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Fit(series); err != nil {
//	    log.Fatal(err)
//	}
//	forecast, _ := m.Forecast(10)
//
// Every model owns a FitResult that Fit overwrites; Result returns a copy:
//
//	res := m.Result()
//	phi, _ := res.Param(model.PhiName(1))
//
// # Predict versus Forecast
//
// Forecast runs the model's multi-step recursion. Predict answers "what is
// the value at these timestamps": trend models evaluate their line, while
// AR, ARIMA and BayesianAR repeat their one-step-ahead prediction for every
// requested timestamp.
//
// # Uncertainty
//
// Linear, Ridge and BayesianAR report predictive variances:
//
//	res, _ := m.PredictWithUncertainty(timestamps)
//	lower, upper, _ := res.Interval(0.95)
//
// # Walk-forward Prediction
//
// IterativePredict refits a model on an expanding window for every point of
// the history and then extends the series:
//
//	cfg := model.DefaultIterativeConfig()
//	cfg.Horizon = 12
//	cfg.ReturnUncertainty = true
//	result, err := model.IterativePredict(m, series, cfg)
//
// Models are not safe for concurrent use.
package model
