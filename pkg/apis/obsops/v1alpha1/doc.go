// Package v1alpha1 mirrors the monitoring.rhobs/v1alpha1 MonitoringStack and
// ThanosQuerier CRDs of the Cluster Observability Operator with the minimal
// fields eipmon needs. Keeping local definitions avoids pulling the operator
// module into go.mod.
package v1alpha1
