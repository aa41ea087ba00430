// Package v1 mirrors the k8s.ovn.org/v1 EgressIP CRD with the minimal fields
// the exporter needs. Keeping a local definition avoids pulling the
// ovn-kubernetes module into go.mod.
package v1
