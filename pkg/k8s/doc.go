// Package k8s provides Kubernetes client configuration and general-purpose utilities.
//
// This package offers reusable utilities for working with Kubernetes and
// OpenShift clusters, including REST client configuration, typed and custom
// resource client creation, create-or-update helpers, and pod failure
// diagnostics.
//
// For resource readiness polling, see the [readiness] sub-package.
//
// Key features:
//   - REST config building from kubeconfig files or in-cluster service
//     accounts (BuildRESTConfig, GetRESTConfig)
//   - Clientset and custom resource client creation (NewClientset, NewCRClient)
//   - Create-or-update with transient-error retry (Upsert)
//   - Idempotent deletion by name or label (Delete, DeleteAllByLabels)
//   - Namespace creation with labels (EnsureNamespace)
//   - Pod failure diagnostics for timeout warnings (DiagnosePodFailures)
package k8s
