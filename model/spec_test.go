package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goforecast"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
	}{
		{"ar", KindAR},
		{"Bayesian_AR", KindBayesianAR},
		{" arima ", KindARIMA},
		{"linear", KindLinear},
		{"RIDGE", KindRidge},
		{"ses", KindSES},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("prophet")
	assert.ErrorIs(t, err, goforecast.ErrInvalidArgument)
}

func TestFromSpec(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Spec{Kind: "ar", P: 3}, "AR(3)"},
		{Spec{Kind: "bayesian_ar", P: 2, Lambda: 1, Seed: 9}, "BayesianAR(2)"},
		{Spec{Kind: "arima", P: 1, D: 1, Q: 1}, "ARIMA(1,1,1)"},
		{Spec{Kind: "linear", Window: 24}, "Linear(window=24)"},
		{Spec{Kind: "ridge", Lambda: 0.5}, "Ridge(lambda=0.5)"},
		{Spec{Kind: "ses", Alpha: 0.3}, "SES(alpha=0.3)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m, err := FromSpec(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestFromSpecInvalid(t *testing.T) {
	specs := []Spec{
		{Kind: "ar"},
		{Kind: "bayesian_ar", P: 1},
		{Kind: "arima"},
		{Kind: "linear", Window: -1},
		{Kind: "ridge", Lambda: -2},
		{Kind: "ses", Alpha: 2},
		{Kind: "unknown"},
	}
	for _, s := range specs {
		m, err := FromSpec(s)
		assert.ErrorIs(t, err, goforecast.ErrInvalidArgument, "%+v", s)
		assert.Nil(t, m, "%+v", s)
	}
}
