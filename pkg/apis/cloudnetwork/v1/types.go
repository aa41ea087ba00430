package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	group   = "cloud.network.openshift.io"
	version = "v1"

	// AssignedCondition is the condition type tracking cloud assignment.
	AssignedCondition = "Assigned"
	// ReasonSuccess means the cloud accepted the IP assignment.
	ReasonSuccess = "CloudResponseSuccess"
	// ReasonPending means the cloud has not answered yet.
	ReasonPending = "CloudResponsePending"
	// ReasonError means the cloud rejected the IP assignment.
	ReasonError = "CloudResponseError"
)

// GroupVersion is the cloud.network.openshift.io/v1 API group version.
//
//nolint:gochecknoglobals // package-level constant for API version
var GroupVersion = schema.GroupVersion{Group: group, Version: version}

// CloudPrivateIPConfig is the cluster-scoped record of one private IP being
// assigned to a node through the cloud provider. The object name is the IP
// address.
type CloudPrivateIPConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   CloudPrivateIPConfigSpec   `json:"spec"`
	Status CloudPrivateIPConfigStatus `json:"status,omitempty"`
}

// CloudPrivateIPConfigSpec names the node the IP should be assigned to.
type CloudPrivateIPConfigSpec struct {
	Node string `json:"node"`
}

// CloudPrivateIPConfigStatus reports the assignment outcome.
type CloudPrivateIPConfigStatus struct {
	Node       string             `json:"node,omitempty"`
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// AssignedReason returns the reason of the Assigned condition, or an empty
// string when the condition is not present yet.
func (in *CloudPrivateIPConfig) AssignedReason() string {
	for _, condition := range in.Status.Conditions {
		if condition.Type == AssignedCondition {
			return condition.Reason
		}
	}

	return ""
}

// AssignedTransitionTime returns when the Assigned condition last changed.
// The zero time is returned when the condition is not present yet.
func (in *CloudPrivateIPConfig) AssignedTransitionTime() metav1.Time {
	for _, condition := range in.Status.Conditions {
		if condition.Type == AssignedCondition {
			return condition.LastTransitionTime
		}
	}

	return metav1.Time{}
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *CloudPrivateIPConfig) DeepCopyInto(out *CloudPrivateIPConfig) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a deep copy of CloudPrivateIPConfig.
func (in *CloudPrivateIPConfig) DeepCopy() *CloudPrivateIPConfig {
	if in == nil {
		return nil
	}

	out := new(CloudPrivateIPConfig)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *CloudPrivateIPConfig) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// DeepCopyInto copies all properties into another CloudPrivateIPConfigStatus.
func (in *CloudPrivateIPConfigStatus) DeepCopyInto(out *CloudPrivateIPConfigStatus) {
	*out = *in

	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}

// CloudPrivateIPConfigList registers the list kind with the scheme for completeness.
type CloudPrivateIPConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []CloudPrivateIPConfig `json:"items"`
}

// DeepCopyInto copies all properties into another CloudPrivateIPConfigList.
func (in *CloudPrivateIPConfigList) DeepCopyInto(out *CloudPrivateIPConfigList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]CloudPrivateIPConfig, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of CloudPrivateIPConfigList.
func (in *CloudPrivateIPConfigList) DeepCopy() *CloudPrivateIPConfigList {
	if in == nil {
		return nil
	}

	out := new(CloudPrivateIPConfigList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *CloudPrivateIPConfigList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// AddToScheme registers the CloudPrivateIPConfig kind with the provided scheme.
//
//nolint:unparam // error return kept for consistency with Kubernetes scheme registration patterns
func AddToScheme(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(
		GroupVersion,
		&CloudPrivateIPConfig{},
		&CloudPrivateIPConfigList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)

	return nil
}
