package charts

import "errors"

// Sentinel kinds for chart lookup errors.
var (
	ErrChartNotFound = errors.New("chart not found")
)
