// Command forecast runs walk-forward forecasting over a CSV series and
// exports the predictions as JSON.
//
// Usage:
//
//	forecast [-config forecast.yaml]
//
// Settings come from the config file, a .env file and GOFORECAST_*
// environment variables, in increasing order of precedence.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/config"
	"github.com/sartorproj/goforecast/model"
	"github.com/sartorproj/goforecast/timeseries"
)

func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("forecast failed")
	}
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func run(cfg *config.Config) error {
	if cfg.Data.Path == "" {
		return fmt.Errorf("%w: data.path is required", goforecast.ErrInvalidArgument)
	}

	series, err := timeseries.LoadCSV(cfg.Data.Path, cfg.Data.CSVOptions())
	if err != nil {
		return err
	}
	log.Info().
		Str("file", cfg.Data.Path).
		Int("observations", series.Len()).
		Float64("min", series.Min()).
		Float64("max", series.Max()).
		Msg("loaded series")

	m, err := model.FromSpec(cfg.Model)
	if err != nil {
		return err
	}

	rep, err := buildReport(m, series, cfg, &log.Logger)
	if err != nil {
		return err
	}
	log.Info().
		Str("model", rep.Model).
		Int("points", len(rep.Walk)).
		Int("horizon", len(rep.Forecast)).
		Msg("forecast complete")

	return writeReport(rep, cfg.Output)
}

func writeReport(rep *Report, out config.OutputConfig) error {
	var (
		data []byte
		err  error
	)
	if out.Indent {
		data, err = json.MarshalIndent(rep, "", "  ")
	} else {
		data, err = json.Marshal(rep)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	if out.Path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(out.Path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out.Path, err)
	}
	log.Info().Str("file", out.Path).Msg("exported results")
	return nil
}
