package metrics

import "errors"

// Sentinel error kinds for this package.
var (
	ErrMetricsDisabled = errors.New("metrics collection disabled")
)
