// Package apis provides API type definitions for the resources eipmon reads
// and writes.
//
// This package contains versioned API types following Kubernetes API
// conventions:
//
//   - monitoring: eipmon's own monitoring domain types and well-known names
//   - cloudnetwork: CloudPrivateIPConfig from the cloud network config controller
//   - obsops: MonitoringStack and ThanosQuerier from the observability operator
//   - olm: OperatorGroup, Subscription and ClusterServiceVersion from OLM
//   - ovn: EgressIP from OVN-Kubernetes
//   - promop: ServiceMonitor and PrometheusRule from the prometheus operator
//
// The external groups declare only the fields this tool touches; each group
// registers its types with the shared scheme in pkg/k8s.
package apis
