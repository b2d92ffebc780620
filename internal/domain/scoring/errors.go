package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidChart = errors.New("invalid chart data")
)
