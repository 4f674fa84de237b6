package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast/timeseries"
)

// ar1Values generates a deterministic AR(1)-like series around 100.
func ar1Values(n int, phi float64) []float64 {
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		innovation := float64(i%7-3) / 3
		values[i] = phi*(values[i-1]-100) + 100 + innovation
	}
	return values
}

// lineValues generates intercept + slope*i.
func lineValues(n int, intercept, slope float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = intercept + slope*float64(i)
	}
	return values
}

// noisyLineValues adds a deterministic zig-zag to a line.
func noisyLineValues(n int, intercept, slope float64) []float64 {
	values := lineValues(n, intercept, slope)
	for i := range values {
		values[i] += float64(i%5-2) / 2
	}
	return values
}

func mustSeries(t *testing.T, values []float64) *timeseries.Series {
	t.Helper()
	s, err := timeseries.New(values)
	require.NoError(t, err)
	return s
}

func hours(from time.Time, offsets ...int) []time.Time {
	out := make([]time.Time, len(offsets))
	for i, h := range offsets {
		out[i] = from.Add(time.Duration(h) * time.Hour)
	}
	return out
}

// epochForTests is the first timestamp timeseries.New assigns.
func epochForTests() time.Time {
	return time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
}
