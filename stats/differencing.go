package stats

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/goforecast"
)

// Difference applies the first difference x[i] - x[i-1] d times in sequence.
// The result has len(values)-d elements. It fails when d is negative or
// when d >= len(values).
func Difference(values []float64, d int) ([]float64, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: differencing order %d is negative", goforecast.ErrInvalidArgument, d)
	}
	if d >= len(values) {
		return nil, fmt.Errorf("%w: differencing order %d leaves no data from %d values", goforecast.ErrInvalidArgument, d, len(values))
	}

	current := make([]float64, len(values))
	copy(current, values)
	for k := 0; k < d; k++ {
		next := make([]float64, len(current)-1)
		for i := 1; i < len(current); i++ {
			next[i-1] = current[i] - current[i-1]
		}
		current = next
	}
	return current, nil
}

// Integrate undoes Difference for a forecast produced on the differenced
// scale. For d = 0 it returns a copy of forecast.
//
// For each of the d levels the last element of a growing seed buffer starts a
// cumulative sum over the current sequence, and the integrated sequence is
// appended to the buffer before the next level. The next level is therefore
// seeded by the last integrated value rather than by the last observation of
// the matching intermediate difference order, which is exact for d = 1 and an
// approximation for d > 1.
func Integrate(forecast, seed []float64, d int) ([]float64, error) {
	if d < 0 {
		return nil, fmt.Errorf("%w: integration order %d is negative", goforecast.ErrInvalidArgument, d)
	}

	result := make([]float64, len(forecast))
	copy(result, forecast)
	if d == 0 || len(result) == 0 {
		return result, nil
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: integration needs at least one seed value", goforecast.ErrInvalidArgument)
	}

	buffer := make([]float64, len(seed), len(seed)+d*len(result))
	copy(buffer, seed)

	for k := 0; k < d; k++ {
		result[0] += buffer[len(buffer)-1]
		floats.CumSum(result, result)
		buffer = append(buffer, result...)
	}
	return result, nil
}
