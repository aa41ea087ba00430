package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Monitoring Type ---

// MonitoringType identifies which backend manages Prometheus-compatible
// scraping for the workload.
type MonitoringType string

const (
	// TypeCOO is the Cluster Observability Operator managed stack.
	TypeCOO MonitoringType = "coo"
	// TypeUWM is OpenShift's built-in User Workload Monitoring.
	TypeUWM MonitoringType = "uwm"
	// TypeNone means no monitoring backend is requested or detected.
	TypeNone MonitoringType = "none"
)

// Set for MonitoringType (pflag.Value interface).
func (m *MonitoringType) Set(value string) error {
	for _, mt := range ValidMonitoringTypes() {
		if strings.EqualFold(value, string(mt)) {
			*m = mt

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s, %s)",
		ErrInvalidMonitoringType,
		value,
		TypeCOO,
		TypeUWM,
	)
}

// IsValid checks if the monitoring type value is supported.
func (m *MonitoringType) IsValid() bool {
	return slices.Contains(ValidMonitoringTypes(), *m)
}

// String returns the string representation of the MonitoringType.
func (m *MonitoringType) String() string {
	return string(*m)
}

// Type returns the type of the MonitoringType.
func (m *MonitoringType) Type() string {
	return "MonitoringType"
}

// Default returns the default value for MonitoringType (coo).
func (m *MonitoringType) Default() any {
	return TypeCOO
}

// ValidMonitoringTypes returns the monitoring types an operator may request.
// TypeNone is a detection result, never a valid request.
func ValidMonitoringTypes() []MonitoringType {
	return []MonitoringType{TypeCOO, TypeUWM}
}

// ValidValues returns all valid MonitoringType values as strings.
func (m *MonitoringType) ValidValues() []string {
	return []string{string(TypeCOO), string(TypeUWM)}
}
