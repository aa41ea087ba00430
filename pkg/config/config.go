package config

import "github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"

// Defaults for every configurable field. Resolution precedence is
// command-line flags > environment variables > these values.
const (
	// DefaultRegistry is the image registry and organization pushed to.
	DefaultRegistry = "quay.io/eip-monitor"
	// DefaultTag is the image tag applied to builds.
	DefaultTag = "latest"
	// DefaultNamespace is where the workload and its monitoring live.
	DefaultNamespace = "eip-monitor"
	// DefaultStorageSize sizes the Prometheus volume for either backend.
	DefaultStorageSize = "10Gi"
	// DefaultLogLevel is the exporter's log level.
	DefaultLogLevel = "info"
	// DefaultBumpType is the semver component bumped on release.
	DefaultBumpType = BumpPatch

	// ImageName is the workload image name under the registry.
	ImageName = "eip-monitor"
)

// Semver components accepted by the release command.
const (
	BumpPatch = "patch"
	BumpMinor = "minor"
	BumpMajor = "major"
)

// Config holds every knob the CLI accepts. It is resolved once at command
// start and passed explicitly into service constructors; nothing reads flags
// or the environment after that.
type Config struct {
	// Registry is the image registry and organization, e.g. "quay.io/eip-monitor".
	Registry string
	// Tag is the image tag.
	Tag string
	// Namespace is where the workload and namespace-scoped monitoring live.
	Namespace string

	// MonitoringType is the requested backend. Falls back to coo when the
	// operator did not choose one.
	MonitoringType v1alpha1.MonitoringType
	// MonitoringTypeExplicit records whether the operator actually provided
	// the type, by flag or environment. Removal with both stacks present is
	// only disambiguated by an explicit choice.
	MonitoringTypeExplicit bool
	// RemoveMonitoring requests teardown instead of installation.
	RemoveMonitoring bool

	// Persistent requests durable Prometheus storage.
	Persistent bool
	// DeletePersistentStorage allows uninstall to delete Prometheus PVCs.
	// Off by default so monitoring data survives a re-install.
	DeletePersistentStorage bool
	// COOStorageClass pins a storage class for the COO Prometheus volume;
	// empty auto-detects the cluster default.
	COOStorageClass string
	// COOStorageSize sizes the COO Prometheus volume.
	COOStorageSize string
	// UWMStorageClass pins a storage class for the UWM Prometheus volume;
	// empty auto-detects the cluster default.
	UWMStorageClass string
	// UWMStorageSize sizes the UWM Prometheus volume.
	UWMStorageSize string
	// RemoveOperator allows uninstall to also remove the observability
	// operator Subscription and CSV. Never automatic.
	RemoveOperator bool

	// CleanAll extends clean to also remove monitoring, both backends.
	CleanAll bool
	// BumpType is the semver component bumped on release.
	BumpType string

	// Verbose enables extra operator-facing detail.
	Verbose bool
	// LogLevel is the exporter's log level.
	LogLevel string
}

// ImageRef returns the full image reference built from Registry, ImageName
// and Tag.
func (c Config) ImageRef() string {
	return c.Registry + "/" + ImageName + ":" + c.Tag
}

// DesiredState derives the reconciler's target from the resolved config.
// For removals the type only counts when the operator explicitly provided
// it; otherwise the reconciler sees TypeNone and refuses to guess between
// two installed stacks.
func (c Config) DesiredState() v1alpha1.DesiredState {
	desired := v1alpha1.DesiredState{
		Type:   c.MonitoringType,
		Remove: c.RemoveMonitoring,
	}

	if c.RemoveMonitoring && !c.MonitoringTypeExplicit {
		desired.Type = v1alpha1.TypeNone
	}

	return desired
}

// StorageFor returns the storage class and size requested for a backend.
func (c Config) StorageFor(monitoringType v1alpha1.MonitoringType) (string, string) {
	if monitoringType == v1alpha1.TypeUWM {
		return c.UWMStorageClass, c.UWMStorageSize
	}

	return c.COOStorageClass, c.COOStorageSize
}
