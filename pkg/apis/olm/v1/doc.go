// Package v1 mirrors the operators.coreos.com/v1 OperatorGroup CRD with the
// minimal fields eipmon needs.
package v1
