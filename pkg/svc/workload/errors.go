package workload

import "errors"

// ErrNoPods is returned when no workload pods exist, typically because the
// workload was never deployed.
var ErrNoPods = errors.New("no workload pods found")

// ErrUnhealthy is returned when the workload's health endpoint reports
// anything other than healthy.
var ErrUnhealthy = errors.New("workload reports unhealthy")

// ErrMetricMissing is returned when the metrics endpoint responds but does
// not expose the expected metric family.
var ErrMetricMissing = errors.New("expected metric family missing")
