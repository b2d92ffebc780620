package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrInvalidCounts = errors.New("invalid judgment counts")
)
