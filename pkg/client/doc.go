// Package client provides clients for the external tools eipmon drives.
//
// This package contains the non-Kubernetes client surface; cluster access
// lives in pkg/k8s:
//
//   - docker: Docker Engine client construction and daemon preflight
//   - git: Git operations for the release workflow, via the git binary
//   - netretry: Transient network error classification and retry backoff
package client
