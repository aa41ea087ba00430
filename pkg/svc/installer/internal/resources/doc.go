// Package resources builds and applies the Kubernetes objects both
// monitoring installers share: the workload's ServiceMonitor, its alerting
// rules, the NetworkPolicies admitting Prometheus scrapes, workload labels
// and persistent storage helpers.
//
// Every managed object carries the app label, and stack-owned objects
// additionally carry the monitoring-type label. Teardown selects on those
// labels so removing one stack never touches the other.
package resources
