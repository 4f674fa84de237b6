// Package config loads the run configuration of the forecast command from a
// YAML file, a .env file and GOFORECAST_ environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/model"
	"github.com/sartorproj/goforecast/timeseries"
)

// EnvPrefix prefixes every environment override, e.g. GOFORECAST_MODEL_KIND.
const EnvPrefix = "GOFORECAST"

// Config is the full run configuration of the forecast command.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Model    model.Spec     `mapstructure:"model"`
	Data     DataConfig     `mapstructure:"data"`
	Forecast ForecastConfig `mapstructure:"forecast"`
	Output   OutputConfig   `mapstructure:"output"`
}

// DataConfig locates the input CSV and names its columns.
type DataConfig struct {
	Path        string `mapstructure:"path"`
	DateColumn  string `mapstructure:"date_column"`
	ValueColumn string `mapstructure:"value_column"`
	IDColumn    string `mapstructure:"id_column"`
	IDFilter    string `mapstructure:"id_filter"`
	DateFormat  string `mapstructure:"date_format"`
	Delimiter   string `mapstructure:"delimiter"`
}

// ForecastConfig controls the walk-forward run and the exported diagnostics.
type ForecastConfig struct {
	Horizon         int     `mapstructure:"horizon"`
	Uncertainty     bool    `mapstructure:"uncertainty"`
	FeedPredictions bool    `mapstructure:"feed_predictions"`
	SkipFailedFolds bool    `mapstructure:"skip_failed_folds"`
	IntervalLevel   float64 `mapstructure:"interval_level"`
	DiagnosticLags  int     `mapstructure:"diagnostic_lags"`
}

// OutputConfig controls where and how the JSON report is written.
type OutputConfig struct {
	// Path of the JSON result file; empty writes to stdout.
	Path   string `mapstructure:"path"`
	Indent bool   `mapstructure:"indent"`
}

// Load reads configuration. An explicit file must exist; otherwise
// forecast.yaml is looked up in ./configs and the working directory and
// defaults apply when it is absent.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("forecast")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("model.kind", "ar")
	v.SetDefault("model.p", 1)
	v.SetDefault("model.d", 0)
	v.SetDefault("model.q", 0)
	v.SetDefault("model.window", 0)
	v.SetDefault("model.lambda", 1.0)
	v.SetDefault("model.alpha", 0.5)
	v.SetDefault("model.seed", 0)

	v.SetDefault("data.path", "")
	v.SetDefault("data.date_column", "ds")
	v.SetDefault("data.value_column", "y")
	v.SetDefault("data.id_column", "")
	v.SetDefault("data.id_filter", "")
	v.SetDefault("data.date_format", "2006-01-02")
	v.SetDefault("data.delimiter", ",")

	v.SetDefault("forecast.horizon", 1)
	v.SetDefault("forecast.uncertainty", false)
	v.SetDefault("forecast.feed_predictions", false)
	v.SetDefault("forecast.skip_failed_folds", false)
	v.SetDefault("forecast.interval_level", 0.95)
	v.SetDefault("forecast.diagnostic_lags", 10)

	v.SetDefault("output.path", "")
	v.SetDefault("output.indent", true)
}

// Validate checks settings the model constructors do not cover.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q", goforecast.ErrInvalidArgument, c.LogLevel)
	}
	if _, err := model.ParseKind(c.Model.Kind); err != nil {
		return err
	}
	if c.Forecast.Horizon < 1 {
		return fmt.Errorf("%w: forecast horizon must be at least 1, got %d", goforecast.ErrInvalidArgument, c.Forecast.Horizon)
	}
	if l := c.Forecast.IntervalLevel; l != 0 && (l <= 0 || l >= 1) {
		return fmt.Errorf("%w: interval level %v outside (0,1)", goforecast.ErrInvalidArgument, l)
	}
	if c.Forecast.DiagnosticLags < 0 {
		return fmt.Errorf("%w: diagnostic lags must be non-negative", goforecast.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(c.Data.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", goforecast.ErrInvalidArgument, c.Data.Delimiter)
	}
	return nil
}

// CSVOptions converts the data section for timeseries.LoadCSV.
func (d DataConfig) CSVOptions() *timeseries.CSVOptions {
	opts := timeseries.DefaultCSVOptions()
	opts.DateColumn = d.DateColumn
	opts.ValueColumn = d.ValueColumn
	opts.IDColumn = d.IDColumn
	opts.IDFilter = d.IDFilter
	if d.DateFormat != "" {
		opts.DateFormat = d.DateFormat
	}
	if r, _ := utf8.DecodeRuneInString(d.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	return opts
}

// Iterative converts the forecast section for model.IterativePredict.
func (f ForecastConfig) Iterative(logger *zerolog.Logger) *model.IterativeConfig {
	return &model.IterativeConfig{
		Horizon:           f.Horizon,
		ReturnUncertainty: f.Uncertainty,
		FeedPredictions:   f.FeedPredictions,
		SkipFailedFolds:   f.SkipFailedFolds,
		Logger:            logger,
	}
}
