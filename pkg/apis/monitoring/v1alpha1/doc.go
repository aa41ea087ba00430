// Package v1alpha1 contains the monitoring domain model: the monitoring
// backend enumeration, the observed cluster state, the operator-requested
// desired state, and the reconciliation actions derived from them.
package v1alpha1
