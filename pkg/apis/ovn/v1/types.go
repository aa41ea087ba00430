package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	group   = "k8s.ovn.org"
	version = "v1"

	// EgressAssignableLabel marks nodes eligible to host egress IPs.
	EgressAssignableLabel = "k8s.ovn.org/egress-assignable"
)

// GroupVersion is the k8s.ovn.org/v1 API group version.
//
//nolint:gochecknoglobals // package-level constant for API version
var GroupVersion = schema.GroupVersion{Group: group, Version: version}

// EgressIP is a cluster-scoped assignment of egress IP addresses to selected
// namespaces, placed on egress-assignable nodes by OVN-Kubernetes.
type EgressIP struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   EgressIPSpec   `json:"spec"`
	Status EgressIPStatus `json:"status,omitempty"`
}

// EgressIPSpec lists the requested addresses and the namespaces they serve.
type EgressIPSpec struct {
	EgressIPs         []string             `json:"egressIPs"`
	NamespaceSelector metav1.LabelSelector `json:"namespaceSelector"`
	PodSelector       metav1.LabelSelector `json:"podSelector,omitempty"`
}

// EgressIPStatus records which node each address landed on.
type EgressIPStatus struct {
	Items []EgressIPStatusItem `json:"items,omitempty"`
}

// EgressIPStatusItem is one assigned address.
type EgressIPStatusItem struct {
	Node     string `json:"node"`
	EgressIP string `json:"egressIP"`
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *EgressIP) DeepCopyInto(out *EgressIP) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a deep copy of EgressIP.
func (in *EgressIP) DeepCopy() *EgressIP {
	if in == nil {
		return nil
	}

	out := new(EgressIP)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *EgressIP) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// DeepCopyInto copies all properties into another EgressIPSpec.
func (in *EgressIPSpec) DeepCopyInto(out *EgressIPSpec) {
	*out = *in

	if in.EgressIPs != nil {
		out.EgressIPs = make([]string, len(in.EgressIPs))
		copy(out.EgressIPs, in.EgressIPs)
	}

	in.NamespaceSelector.DeepCopyInto(&out.NamespaceSelector)
	in.PodSelector.DeepCopyInto(&out.PodSelector)
}

// DeepCopyInto copies all properties into another EgressIPStatus.
func (in *EgressIPStatus) DeepCopyInto(out *EgressIPStatus) {
	*out = *in

	if in.Items != nil {
		out.Items = make([]EgressIPStatusItem, len(in.Items))
		copy(out.Items, in.Items)
	}
}

// EgressIPList registers the list kind with the scheme for completeness.
type EgressIPList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []EgressIP `json:"items"`
}

// DeepCopyInto copies all properties into another EgressIPList.
func (in *EgressIPList) DeepCopyInto(out *EgressIPList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]EgressIP, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of EgressIPList.
func (in *EgressIPList) DeepCopy() *EgressIPList {
	if in == nil {
		return nil
	}

	out := new(EgressIPList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *EgressIPList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// AddToScheme registers the EgressIP kind with the provided scheme.
//
//nolint:unparam // error return kept for consistency with Kubernetes scheme registration patterns
func AddToScheme(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(
		GroupVersion,
		&EgressIP{},
		&EgressIPList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)

	return nil
}
