package model

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/timeseries"
)

// IterativeConfig holds configuration for walk-forward prediction.
type IterativeConfig struct {
	Horizon           int  // Out-of-sample steps after the series (default: 1)
	ReturnUncertainty bool // Record variances for models that estimate them
	// FeedPredictions appends each out-of-sample prediction to the training
	// data of the next step. Honoured for autoregressive kinds only.
	FeedPredictions bool
	// SkipFailedFolds logs and drops folds whose fit or predict fails instead
	// of aborting. The output is then shorter than usual.
	SkipFailedFolds bool
	Name            string          // Provenance name (default: "iterative:<model>")
	Logger          *zerolog.Logger // Defaults to a no-op logger
}

// DefaultIterativeConfig returns the default walk-forward configuration.
func DefaultIterativeConfig() *IterativeConfig {
	return &IterativeConfig{Horizon: 1}
}

// IterativePredict refits m on an expanding (or sliding) window and
// predicts one point at a time.
//
// Phase 1 reconstructs the history: for every index i >= m.MinTrainSize()
// the model is refitted from scratch on the observations before i (the last
// m.SlidingWindow() of them, if set) and predicts the timestamp at i.
// Phase 2 extends the series by cfg.Horizon steps: each step refits on the
// most recent allowed window and predicts the next extrapolated timestamp.
//
// The result holds (series.Len() - m.MinTrainSize()) + cfg.Horizon points,
// with variances when requested and supported by the model.
func IterativePredict(m Model, series *timeseries.Series, cfg *IterativeConfig) (*PredictionResult, error) {
	if cfg == nil {
		cfg = DefaultIterativeConfig()
	}
	if cfg.Horizon < 1 {
		return nil, fmt.Errorf("%w: horizon must be at least 1, got %d", goforecast.ErrInvalidArgument, cfg.Horizon)
	}
	if err := checkLength(m, series); err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	logger = logger.With().Str("model", m.String()).Logger()

	w := &walker{
		model:   m,
		wantVar: cfg.ReturnUncertainty && m.Kind().SupportsUncertainty(),
		skip:    cfg.SkipFailedFolds,
		logger:  logger,
	}

	n := series.Len()
	minTrain := m.MinTrainSize()
	window := m.SlidingWindow()

	for i := minTrain; i < n; i++ {
		start := 0
		if window > 0 && i > window {
			start = i - window
		}
		train, err := series.Slice(start, i)
		if err != nil {
			return nil, err
		}
		if _, err := w.step(i, train, series.Time(i)); err != nil {
			return nil, err
		}
	}

	feed := cfg.FeedPredictions && m.Kind().Autoregressive()
	working := series
	for k, ts := range series.NextTimestamps(cfg.Horizon) {
		train := working
		if window > 0 {
			train = working.Tail(window)
		}
		point, err := w.step(n+k, train, ts)
		if err != nil {
			return nil, err
		}
		if feed && point != nil {
			if working, err = working.Append(ts, *point); err != nil {
				return nil, err
			}
		}
	}

	name := cfg.Name
	if name == "" {
		name = "iterative:" + m.String()
	}
	if len(w.times) == 0 {
		return nil, fmt.Errorf("%w: every fold failed for %s", goforecast.ErrInvalidArgument, m)
	}
	forecast, err := newSeries(w.times, w.values, name)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("points", forecast.Len()).
		Int("skipped", w.skipped).
		Msg("iterative prediction complete")

	result := &PredictionResult{Forecast: forecast}
	if w.wantVar {
		result.Variance = w.variances
	}
	return result, nil
}

// walker accumulates the output of successive refits.
type walker struct {
	model   Model
	wantVar bool
	skip    bool
	logger  zerolog.Logger

	times     []time.Time
	values    []float64
	variances []float64
	skipped   int
}

// step refits on train and predicts ts. It returns the point prediction, or
// nil when the fold failed and was skipped.
func (w *walker) step(fold int, train *timeseries.Series, ts time.Time) (*float64, error) {
	w.logger.Debug().
		Int("fold", fold).
		Int("train_size", train.Len()).
		Time("timestamp", ts).
		Msg("refit")

	point, variance, err := w.fitPredict(train, ts)
	if err != nil {
		if !w.skip {
			return nil, fmt.Errorf("fold %d: %w", fold, err)
		}
		w.skipped++
		w.logger.Warn().
			Err(err).
			Int("fold", fold).
			Time("timestamp", ts).
			Msg("skipping failed fold")
		return nil, nil
	}

	w.times = append(w.times, ts)
	w.values = append(w.values, point)
	if w.wantVar {
		w.variances = append(w.variances, variance)
	}
	return &point, nil
}

func (w *walker) fitPredict(train *timeseries.Series, ts time.Time) (float64, float64, error) {
	if err := w.model.Fit(train); err != nil {
		return 0, 0, err
	}
	at := []time.Time{ts}

	if !w.wantVar {
		pred, err := w.model.Predict(at)
		if err != nil {
			return 0, 0, err
		}
		return pred.Value(0), 0, nil
	}

	res, err := w.model.PredictWithUncertainty(at)
	if err != nil {
		return 0, 0, err
	}
	return res.Forecast.Value(0), res.Variance[0], nil
}
