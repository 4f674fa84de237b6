package goforecast

import "errors"

var (
	// ErrInvalidArgument reports bad hyperparameters, mismatched lengths,
	// series shorter than a model's minimum, or a non-positive horizon.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFitted is returned by predict and forecast calls made before a
	// successful fit.
	ErrNotFitted = errors.New("model must be fitted before prediction")
	// ErrNumericalInstability reports a linear system that could not be solved,
	// even through the pseudo-inverse.
	ErrNumericalInstability = errors.New("numerical instability")
)
