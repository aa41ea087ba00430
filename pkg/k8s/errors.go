package k8s

import (
	"errors"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrKubeconfigPathEmpty is returned when kubeconfig path is empty.
var ErrKubeconfigPathEmpty = errors.New("kubeconfig path is empty")

// IsTransientAPIError checks if the error is a transient API error that should
// be retried, such as the window where a CRD is registered but its API
// endpoints are not yet servable.
func IsTransientAPIError(err error) bool {
	if err == nil {
		return false
	}

	if apierrors.IsServiceUnavailable(err) {
		return true
	}

	// "the server could not find the requested resource" is typically an IsNotFound
	// error at the API level (not the same as a resource not existing)
	errMsg := err.Error()

	return strings.Contains(errMsg, "the server could not find the requested resource") ||
		strings.Contains(errMsg, "no matches for kind")
}

// IsMissingKind reports whether the error means the resource's CRD is not
// installed at all. Lookups and deletes treat this as "resource absent".
func IsMissingKind(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()

	return strings.Contains(errMsg, "no matches for kind") ||
		strings.Contains(errMsg, "could not find the requested resource")
}

// IsPermissionDenied reports whether the error is an RBAC denial. Callers
// treat these as warnings with a cluster-admin remediation hint rather than
// hard failures.
func IsPermissionDenied(err error) bool {
	return apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err)
}
