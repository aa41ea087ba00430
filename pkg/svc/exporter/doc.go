// Package exporter implements the long-running metrics server shipped in the
// workload image. A collection loop lists EgressIP, CloudPrivateIPConfig and
// the egress-assignable nodes on a fixed interval, folds each snapshot into
// assignment, distribution, trend and health metrics, and serves them over
// HTTP next to a health probe. Collection failures are counted and logged;
// the loop itself never exits until the process is told to stop.
package exporter
