// Package installer provides functionality for installing and uninstalling monitoring backends.
//
// This package defines the Installer interface and a factory that maps a
// monitoring type to its implementation: the Cluster Observability Operator
// stack or OpenShift's built-in User Workload Monitoring.
package installer
