// Package v1alpha1 mirrors the operators.coreos.com/v1alpha1 Subscription and
// ClusterServiceVersion CRDs with the minimal fields eipmon needs to install
// the Cluster Observability Operator and wait for it to succeed. Keeping
// local definitions avoids pulling the operator-lifecycle-manager module into
// go.mod.
package v1alpha1
