package model

import (
	"strings"

	"github.com/sartorproj/goforecast"
	"github.com/sartorproj/goforecast/stats"
)

// Diagnose runs a Ljung-Box test on the defined residuals of a fitted model,
// counting its AR and MA coefficients as fitted degrees of freedom.
func Diagnose(m Model, lags int) (*stats.LjungBoxResult, error) {
	res := m.Result()
	if !res.IsFitted {
		return nil, goforecast.ErrNotFitted
	}

	fitDF := 0
	for name := range res.Params {
		if strings.HasPrefix(name, "phi.") || strings.HasPrefix(name, "theta.") {
			fitDF++
		}
	}
	return stats.LjungBox(validValues(res.Residuals), lags, fitDF)
}
