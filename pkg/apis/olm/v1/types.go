package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	group   = "operators.coreos.com"
	version = "v1"
)

// GroupVersion is the operators.coreos.com/v1 API group version.
//
//nolint:gochecknoglobals // package-level constant for API version
var GroupVersion = schema.GroupVersion{Group: group, Version: version}

// OperatorGroup scopes an OLM-installed operator to a set of namespaces.
type OperatorGroup struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec OperatorGroupSpec `json:"spec"`
}

// OperatorGroupSpec lists the namespaces the operator watches. An empty list
// means all namespaces.
type OperatorGroupSpec struct {
	TargetNamespaces []string `json:"targetNamespaces,omitempty"`
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *OperatorGroup) DeepCopyInto(out *OperatorGroup) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)

	if in.Spec.TargetNamespaces != nil {
		out.Spec.TargetNamespaces = make([]string, len(in.Spec.TargetNamespaces))
		copy(out.Spec.TargetNamespaces, in.Spec.TargetNamespaces)
	}
}

// DeepCopy creates a deep copy of OperatorGroup.
func (in *OperatorGroup) DeepCopy() *OperatorGroup {
	if in == nil {
		return nil
	}

	out := new(OperatorGroup)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *OperatorGroup) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// OperatorGroupList registers the list kind with the scheme for completeness.
type OperatorGroupList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []OperatorGroup `json:"items"`
}

// DeepCopyInto copies all properties into another OperatorGroupList.
func (in *OperatorGroupList) DeepCopyInto(out *OperatorGroupList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]OperatorGroup, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of OperatorGroupList.
func (in *OperatorGroupList) DeepCopy() *OperatorGroupList {
	if in == nil {
		return nil
	}

	out := new(OperatorGroupList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *OperatorGroupList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// AddToScheme registers the OperatorGroup kind with the provided scheme.
//
//nolint:unparam // error return kept for consistency with Kubernetes scheme registration patterns
func AddToScheme(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(
		GroupVersion,
		&OperatorGroup{},
		&OperatorGroupList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)

	return nil
}
