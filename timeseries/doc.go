// Package timeseries provides the observation sequence used by every model.
//
// A Series is an immutable, ordered list of (timestamp, value) pairs with at
// least one observation and strictly increasing timestamps. Accessors return
// copies and every transformation returns a new Series.
//
// # Creating a Series
//
// Create a time series from a slice (hourly timestamps are generated):
//
//	series, err := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//
// Or with explicit timestamps:
//
//	series, err := timeseries.NewWithTimestamps(times, values)
//
// # Loading from CSV
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "value"
//	series, err := timeseries.LoadCSV("data.csv", opts)
//
// # Windows and Extrapolation
//
//	window := series.Tail(30)          // most recent 30 observations
//	subset, _ := series.Slice(10, 50)  // observations [10, 50)
//	next := series.NextTimestamps(5)   // five future timestamps, constant step
//
// Future timestamps assume a constant step equal to the last observed delta.
package timeseries
