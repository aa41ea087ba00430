// Package v1 mirrors the cloud.network.openshift.io/v1 CloudPrivateIPConfig
// CRD with the minimal fields the exporter needs. Keeping a local definition
// avoids pulling the openshift/api module into go.mod.
package v1
