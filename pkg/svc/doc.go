// Package svc provides service layer components for eipmon.
//
// This package contains the business logic layer that coordinates between
// the CLI commands and the underlying clients/infrastructure.
//
// Subpackages:
//   - dashboard: Grafana dashboard manifest linting and repair
//   - detector: Installed monitoring backend detection
//   - exporter: The EgressIP metrics exporter the workload runs
//   - image: Container image build and push with content-hash caching
//   - installer: Monitoring backend installers (COO and UWM)
//   - reconciler: Decision engine between detected and desired monitoring state
//   - release: Version bump, tag and publish workflow
//   - workload: Exporter deployment lifecycle on the cluster
package svc
