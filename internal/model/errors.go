package model

import "errors"

var (
	// ErrInsufficientData means a series is empty or too short to fit.
	ErrInsufficientData = errors.New("insufficient data for trend modeling")
	// ErrDegenerateSeries means every point shares the same year.
	ErrDegenerateSeries = errors.New("zero variance in years")
	// ErrUnknownModel means the model type is neither linear nor log.
	ErrUnknownModel = errors.New("unknown model type")
)
