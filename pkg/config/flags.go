package config

import (
	"github.com/spf13/pflag"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
)

// AddGlobalFlags registers the flags every subcommand inherits. Meant for
// the root command's persistent flag set.
func AddGlobalFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagNamespace, "n", DefaultNamespace,
		"Namespace the workload and its monitoring live in")
	flags.BoolP(FlagVerbose, "v", false,
		"Print extra detail")
	flags.String(FlagLogLevel, DefaultLogLevel,
		"Log level for the exporter (trace, debug, info, warn, error)")
}

// AddImageFlags registers the image build and push flags.
func AddImageFlags(flags *pflag.FlagSet) {
	flags.StringP(FlagRegistry, "r", DefaultRegistry,
		"Image registry and organization to push to")
	flags.StringP(FlagTag, "t", DefaultTag,
		"Image tag")
}

// AddMonitoringFlags registers the monitoring reconciliation flags.
// The monitoring type flag validates at parse time via the enum's
// pflag.Value implementation.
func AddMonitoringFlags(flags *pflag.FlagSet) {
	monitoringType := v1alpha1.TypeCOO
	flags.Var(&monitoringType, FlagMonitoringType,
		"Monitoring backend to manage (coo or uwm)")
	flags.Bool(FlagRemoveMonitoring, false,
		"Remove the detected monitoring stack instead of installing")
	flags.Bool(FlagPersistent, false,
		"Request durable Prometheus storage")
	flags.Bool(FlagDeletePersistentStorage, false,
		"Allow uninstall to delete Prometheus PVCs (default retains data)")
	flags.String(FlagCOOStorageClass, "",
		"Storage class for the COO Prometheus volume (empty auto-detects the cluster default)")
	flags.String(FlagCOOStorageSize, DefaultStorageSize,
		"Size of the COO Prometheus volume")
	flags.String(FlagUWMStorageClass, "",
		"Storage class for the UWM Prometheus volume (empty auto-detects the cluster default)")
	flags.String(FlagUWMStorageSize, DefaultStorageSize,
		"Size of the UWM Prometheus volume")
	flags.Bool(FlagRemoveOperator, false,
		"Also remove the observability operator subscription on uninstall (never automatic)")
}

// AddCleanFlags registers the clean command's flags.
func AddCleanFlags(flags *pflag.FlagSet) {
	flags.Bool(FlagCleanAll, false,
		"Also remove monitoring (both backends) and cached build markers")
}

// AddReleaseFlags registers the release command's flags.
func AddReleaseFlags(flags *pflag.FlagSet) {
	flags.String(FlagBump, DefaultBumpType,
		"Semver component to bump (patch, minor, major)")
}
