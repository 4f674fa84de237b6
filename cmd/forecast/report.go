package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/model"
	"github.com/sartorproj/goforecast/stats"
	"github.com/sartorproj/goforecast/timeseries"
)

// Point is one prediction in the exported report.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Variance  *float64  `json:"variance,omitempty"`
	Lower     *float64  `json:"lower,omitempty"`
	Upper     *float64  `json:"upper,omitempty"`
}

// Diagnostics is the Ljung-Box test on the full-sample residuals together
// with their autocorrelation and partial autocorrelation up to Lags.
type Diagnostics struct {
	Statistic   float64   `json:"statistic"`
	PValue      float64   `json:"p_value"`
	Lags        int       `json:"lags"`
	DOF         int       `json:"dof"`
	Independent bool      `json:"independent"`
	ACF         []float64 `json:"acf,omitempty"`
	PACF        []float64 `json:"pacf,omitempty"`
}

// Report holds everything the command exports.
type Report struct {
	Model        string             `json:"model"`
	Spec         model.Spec         `json:"spec"`
	Observations int                `json:"observations"`
	Params       map[string]float64 `json:"params"`
	// Walk is the walk-forward output: in-sample reconstruction followed by
	// the out-of-sample horizon.
	Walk []Point `json:"walk"`
	// Forecast is the multi-step forecast of the model fitted on all data.
	Forecast    []Point      `json:"forecast"`
	Samples     []float64    `json:"samples,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

func buildReport(m model.Model, series *timeseries.Series, cfg *config.Config, logger *zerolog.Logger) (*Report, error) {
	walk, err := model.IterativePredict(m, series, cfg.Forecast.Iterative(logger))
	if err != nil {
		return nil, fmt.Errorf("walk-forward prediction: %w", err)
	}
	walkPoints, err := points(walk, cfg.Forecast.IntervalLevel)
	if err != nil {
		return nil, err
	}

	if err := m.Fit(series); err != nil {
		return nil, fmt.Errorf("fitting full series: %w", err)
	}
	fit := m.Result()

	horizon := cfg.Forecast.Horizon
	forecast, err := m.Forecast(horizon)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		Model:        m.String(),
		Spec:         cfg.Model,
		Observations: series.Len(),
		Params:       fit.Params,
		Walk:         walkPoints,
	}
	rep.Forecast, err = points(&model.PredictionResult{Forecast: forecast}, 0)
	if err != nil {
		return nil, err
	}

	if cfg.Forecast.Uncertainty && m.Kind() == model.KindBayesianAR {
		sim, err := m.PredictWithUncertainty(forecast.Timestamps())
		if err != nil {
			return nil, err
		}
		rep.Samples = sim.Samples
	}

	if cfg.Forecast.DiagnosticLags > 0 {
		rep.Diagnostics, err = diagnose(m, cfg.Forecast.DiagnosticLags, logger)
		if err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// diagnose returns nil when the residuals cannot be tested, e.g. when the
// fit is exact.
func diagnose(m model.Model, lags int, logger *zerolog.Logger) (*Diagnostics, error) {
	lb, err := model.Diagnose(m, lags)
	if errors.Is(err, goforecast.ErrInvalidArgument) {
		logger.Warn().Err(err).Msg("skipping residual diagnostics")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	diag := fromLjungBox(lb)
	residuals := definedValues(m.Result().Residuals)
	diag.ACF = stats.ACF(residuals, lb.Lags)
	diag.PACF = stats.PACF(residuals, lb.Lags)
	return diag, nil
}

// definedValues drops the NaN placeholders of undefined residuals.
func definedValues(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func fromLjungBox(lb *stats.LjungBoxResult) *Diagnostics {
	return &Diagnostics{
		Statistic:   lb.Statistic,
		PValue:      lb.PValue,
		Lags:        lb.Lags,
		DOF:         lb.DOF,
		Independent: lb.Independent(0.05),
	}
}

func points(res *model.PredictionResult, level float64) ([]Point, error) {
	var lower, upper []float64
	if res.HasVariance() && level > 0 {
		var err error
		if lower, upper, err = res.Interval(level); err != nil {
			return nil, err
		}
	}

	out := make([]Point, res.Forecast.Len())
	for i := range out {
		out[i] = Point{Timestamp: res.Forecast.Time(i), Value: res.Forecast.Value(i)}
		if res.HasVariance() {
			out[i].Variance = &res.Variance[i]
		}
		if lower != nil {
			out[i].Lower = &lower[i]
			out[i].Upper = &upper[i]
		}
	}
	return out, nil
}
