// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goforecast"
)

// DefaultStep is the spacing used by New and by single-point series.
const DefaultStep = time.Hour

// epoch anchors the synthetic timestamps produced by New.
var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Series is an immutable, ordered sequence of timestamped values.
// A Series always holds at least one observation.
type Series struct {
	timestamps []time.Time
	values     []float64
	name       string
}

// New creates a series from values with hourly timestamps.
func New(values []float64) (*Series, error) {
	timestamps := make([]time.Time, len(values))
	for i := range timestamps {
		timestamps[i] = epoch.Add(time.Duration(i) * DefaultStep)
	}
	return NewWithTimestamps(timestamps, values)
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(values []float64) *Series {
	s, err := New(values)
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithTimestamps creates a time series with explicit timestamps.
// Timestamps must be strictly increasing.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: series must contain at least one observation", goforecast.ErrInvalidArgument)
	}
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps for %d values", goforecast.ErrInvalidArgument, len(timestamps), len(values))
	}
	for i := 1; i < len(timestamps); i++ {
		if !timestamps[i].After(timestamps[i-1]) {
			return nil, fmt.Errorf("%w: timestamps not strictly increasing at index %d", goforecast.ErrInvalidArgument, i)
		}
	}

	ts := make([]time.Time, len(timestamps))
	copy(ts, timestamps)
	vs := make([]float64, len(values))
	copy(vs, values)

	return &Series{timestamps: ts, values: vs}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.values)
}

// Name returns the provenance name of the series.
func (s *Series) Name() string {
	return s.name
}

// WithName returns a copy of the series carrying the given name.
func (s *Series) WithName(name string) *Series {
	c := s.Copy()
	c.name = name
	return c
}

// Values returns a copy of the observed values.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Timestamps returns a copy of the timestamps.
func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.timestamps))
	copy(out, s.timestamps)
	return out
}

// Value returns the i-th value.
func (s *Series) Value(i int) float64 {
	return s.values[i]
}

// Time returns the i-th timestamp.
func (s *Series) Time(i int) time.Time {
	return s.timestamps[i]
}

// Last returns the final observation.
func (s *Series) Last() (time.Time, float64) {
	n := len(s.values) - 1
	return s.timestamps[n], s.values[n]
}

// Step returns the last observed timestamp delta, or DefaultStep for a
// single observation.
func (s *Series) Step() time.Duration {
	n := len(s.timestamps)
	if n < 2 {
		return DefaultStep
	}
	return s.timestamps[n-1].Sub(s.timestamps[n-2])
}

// NextTimestamps extrapolates k timestamps after the end of the series,
// assuming a constant step equal to Step.
func (s *Series) NextTimestamps(k int) []time.Time {
	if k <= 0 {
		return nil
	}
	last, _ := s.Last()
	step := s.Step()
	out := make([]time.Time, k)
	for i := range out {
		out[i] = last.Add(time.Duration(i+1) * step)
	}
	return out
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	return stat.Mean(s.values, nil)
}

// Variance calculates the sample variance of the series.
func (s *Series) Variance() float64 {
	if len(s.values) < 2 {
		return 0
	}
	return stat.Variance(s.values, nil)
}

// Std calculates the standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	return floats.Min(s.values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	return floats.Max(s.values)
}

// Slice returns the observations in [start, end) as a new series.
func (s *Series) Slice(start, end int) (*Series, error) {
	if start < 0 {
		start = 0
	}
	if end > len(s.values) {
		end = len(s.values)
	}
	if start >= end {
		return nil, fmt.Errorf("%w: empty slice [%d, %d)", goforecast.ErrInvalidArgument, start, end)
	}

	values := make([]float64, end-start)
	copy(values, s.values[start:end])
	timestamps := make([]time.Time, end-start)
	copy(timestamps, s.timestamps[start:end])

	return &Series{timestamps: timestamps, values: values, name: s.name}, nil
}

// Tail returns the last n observations. A non-positive n or one larger than
// the series returns a full copy.
func (s *Series) Tail(n int) *Series {
	if n <= 0 || n >= len(s.values) {
		return s.Copy()
	}
	tail, _ := s.Slice(len(s.values)-n, len(s.values))
	return tail
}

// Append returns a new series with one observation added at the end.
func (s *Series) Append(t time.Time, v float64) (*Series, error) {
	last, _ := s.Last()
	if !t.After(last) {
		return nil, fmt.Errorf("%w: appended timestamp %s not after %s", goforecast.ErrInvalidArgument, t, last)
	}
	c := s.Copy()
	c.timestamps = append(c.timestamps, t)
	c.values = append(c.values, v)
	return c, nil
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	return &Series{
		timestamps: s.Timestamps(),
		values:     s.Values(),
		name:       s.name,
	}
}
