// Package cmd provides the command-line interface for eipmon.
//
// The root command carries the shared namespace, verbosity and log-level
// flags; subcommands cover the image pipeline (build, push), the workload
// lifecycle (deploy, test, logs, clean), monitoring reconciliation, the
// metrics exporter itself (serve), dashboard maintenance and releases.
package cmd
