// Package readiness provides Kubernetes resource readiness polling utilities.
//
// This package offers reusable utilities for waiting until Kubernetes
// resources become ready. Every wait is a fixed-interval poll with a hard
// deadline; there is no backoff, and a deadline overrun surfaces
// ErrTimeoutExceeded so callers can decide whether it is fatal.
//
// Key features:
//   - Generic polling mechanism (PollForReadiness)
//   - Deployment rollout polling (WaitForDeploymentReady)
//   - Namespace phase polling (WaitForNamespaceActive)
//   - Labelled pod polling (WaitForPodsRunning)
//   - API server reachability polling (WaitForAPIServerReady)
package readiness
