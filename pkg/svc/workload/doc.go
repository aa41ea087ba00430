// Package workload deploys and operates the exporter workload: the
// ServiceAccount, ConfigMap, Deployment and Service that put the metrics
// endpoint on the cluster, plus the smoke test, log streaming and teardown
// around them.
//
// The monitoring stacks scraping the workload are managed separately by the
// installers; this package only guarantees the scrape surface they expect,
// the app label and the named metrics port.
package workload
