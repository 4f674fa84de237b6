package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sartorproj/goforecast"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for dates (default: "ds")
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (optional, for filtering)
	IDFilter    string // Value to filter by ID column
	DateFormat  string // Date format tried first (default: "2006-01-02")
	Delimiter   rune   // Field delimiter (default: ',')
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  "ds",
		ValueColumn: "y",
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}
}

var fallbackDateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006",
}

// LoadCSV loads a time series from a CSV file with a header row.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader. Missing values
// ("", "NA", "NaN", "null") are skipped. When every kept row carries a
// parseable date the series uses those timestamps, otherwise hourly ones.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	valueIdx, dateIdx, idIdx := -1, -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case opts.ValueColumn:
			valueIdx = i
		case opts.DateColumn:
			dateIdx = i
		case opts.IDColumn:
			if opts.IDColumn != "" {
				idIdx = i
			}
		}
	}
	if valueIdx == -1 {
		return nil, fmt.Errorf("%w: value column %q not found", goforecast.ErrInvalidArgument, opts.ValueColumn)
	}
	if opts.IDFilter != "" && idIdx == -1 {
		return nil, fmt.Errorf("%w: id column %q not found", goforecast.ErrInvalidArgument, opts.IDColumn)
	}

	var values []float64
	var timestamps []time.Time
	datesOK := dateIdx >= 0

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", row, err)
		}

		if opts.IDFilter != "" && strings.TrimSpace(record[idIdx]) != opts.IDFilter {
			continue
		}

		raw := strings.TrimSpace(record[valueIdx])
		switch raw {
		case "", "NA", "NaN", "null":
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", goforecast.ErrInvalidArgument, row, err)
		}
		values = append(values, v)

		if datesOK {
			ts, ok := parseDate(strings.TrimSpace(record[dateIdx]), opts.DateFormat)
			if !ok {
				datesOK = false
				continue
			}
			timestamps = append(timestamps, ts)
		}
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no valid data found in CSV", goforecast.ErrInvalidArgument)
	}
	if datesOK {
		return NewWithTimestamps(timestamps, values)
	}
	return New(values)
}

func parseDate(s, preferred string) (time.Time, bool) {
	if preferred != "" {
		if ts, err := time.Parse(preferred, s); err == nil {
			return ts, true
		}
	}
	for _, layout := range fallbackDateFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
