// Package detector detects installed monitoring backends by querying the
// Kubernetes API for the namespace-scoped resources each backend owns. Every
// reconciliation starts from a fresh detection; no client-side state is
// persisted between runs.
package detector
