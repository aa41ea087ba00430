// Package v1 mirrors the monitoring.coreos.com/v1 ServiceMonitor and
// PrometheusRule CRDs with the minimal fields eipmon needs. Keeping local
// definitions avoids pulling the entire prometheus-operator module into
// go.mod.
package v1
