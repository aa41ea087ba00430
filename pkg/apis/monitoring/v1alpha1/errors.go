package v1alpha1

import "errors"

// ErrInvalidMonitoringType is returned when a monitoring type value is not supported.
var ErrInvalidMonitoringType = errors.New("invalid monitoring type")

// ErrAmbiguousPrimary is returned when both monitoring stacks are present and a
// single primary type is required but none was specified.
var ErrAmbiguousPrimary = errors.New(
	"both coo and uwm monitoring are present; specify --monitoring-type to disambiguate",
)
