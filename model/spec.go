package model

import (
	"fmt"
	"strings"

	"github.com/sartorproj/goforecast"
)

// Spec is a declarative model description, as read from configuration.
type Spec struct {
	Kind           string    `mapstructure:"kind" json:"kind"`
	P              int       `mapstructure:"p" json:"p,omitempty"`
	D              int       `mapstructure:"d" json:"d,omitempty"`
	Q              int       `mapstructure:"q" json:"q,omitempty"`
	Window         int       `mapstructure:"window" json:"window,omitempty"`
	Lambda         float64   `mapstructure:"lambda" json:"lambda,omitempty"`
	Alpha          float64   `mapstructure:"alpha" json:"alpha,omitempty"`
	PriorPrecision []float64 `mapstructure:"prior_precision" json:"prior_precision,omitempty"`
	Seed           uint64    `mapstructure:"seed" json:"seed,omitempty"`
}

// ParseKind maps a kind name ("ar", "bayesian_ar", "arima", "linear",
// "ridge", "ses") to its Kind.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for k := KindAR; k <= KindSES; k++ {
		if k.String() == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown model kind %q", goforecast.ErrInvalidArgument, name)
}

// FromSpec builds the model described by s.
func FromSpec(s Spec) (Model, error) {
	kind, err := ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindAR:
		return asModel(NewAR(s.P))
	case KindBayesianAR:
		var opts []BayesianOption
		if s.Seed != 0 {
			opts = append(opts, WithSeed(s.Seed))
		}
		return asModel(NewBayesianAR(s.P, Prior{Lambda: s.Lambda, Precision: s.PriorPrecision}, opts...))
	case KindARIMA:
		return asModel(NewARIMA(s.P, s.D, s.Q))
	case KindLinear:
		return asModel(NewLinear(s.Window))
	case KindRidge:
		return asModel(NewRidge(s.Lambda, s.Window))
	default:
		return asModel(NewSES(s.Alpha))
	}
}

// asModel keeps a failed constructor from returning a non-nil Model that
// wraps a nil pointer.
func asModel[M Model](m M, err error) (Model, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}
