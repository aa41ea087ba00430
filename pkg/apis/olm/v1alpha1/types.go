package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	group   = "operators.coreos.com"
	version = "v1alpha1"

	// SubscriptionStateAtLatestKnown means OLM has installed the newest CSV
	// known for the subscribed channel.
	SubscriptionStateAtLatestKnown = "AtLatestKnown"
	// CSVPhaseSucceeded means the operator install completed.
	CSVPhaseSucceeded = "Succeeded"
)

// GroupVersion is the operators.coreos.com/v1alpha1 API group version.
//
//nolint:gochecknoglobals // package-level constant for API version
var GroupVersion = schema.GroupVersion{Group: group, Version: version}

// Subscription asks OLM to install and keep an operator up to date.
type Subscription struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   SubscriptionSpec   `json:"spec"`
	Status SubscriptionStatus `json:"status,omitempty"`
}

// SubscriptionSpec names the package, channel and catalog source.
type SubscriptionSpec struct {
	Channel             string `json:"channel,omitempty"`
	Package             string `json:"name"`
	Source              string `json:"source"`
	SourceNamespace     string `json:"sourceNamespace"`
	InstallPlanApproval string `json:"installPlanApproval,omitempty"`
}

// SubscriptionStatus reports the install progress.
type SubscriptionStatus struct {
	State        string `json:"state,omitempty"`
	CurrentCSV   string `json:"currentCSV,omitempty"`
	InstalledCSV string `json:"installedCSV,omitempty"`
}

// AtLatestKnown reports whether OLM considers the subscription fully installed.
func (in *Subscription) AtLatestKnown() bool {
	return in.Status.State == SubscriptionStateAtLatestKnown
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *Subscription) DeepCopyInto(out *Subscription) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Spec = in.Spec
	out.Status = in.Status
}

// DeepCopy creates a deep copy of Subscription.
func (in *Subscription) DeepCopy() *Subscription {
	if in == nil {
		return nil
	}

	out := new(Subscription)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *Subscription) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// SubscriptionList registers the list kind with the scheme for completeness.
type SubscriptionList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []Subscription `json:"items"`
}

// DeepCopyInto copies all properties into another SubscriptionList.
func (in *SubscriptionList) DeepCopyInto(out *SubscriptionList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]Subscription, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of SubscriptionList.
func (in *SubscriptionList) DeepCopy() *SubscriptionList {
	if in == nil {
		return nil
	}

	out := new(SubscriptionList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *SubscriptionList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// ClusterServiceVersion is the OLM record of one installed operator version.
type ClusterServiceVersion struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Status ClusterServiceVersionStatus `json:"status,omitempty"`
}

// ClusterServiceVersionStatus reports the install phase.
type ClusterServiceVersionStatus struct {
	Phase   string `json:"phase,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Succeeded reports whether the operator install completed.
func (in *ClusterServiceVersion) Succeeded() bool {
	return in.Status.Phase == CSVPhaseSucceeded
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *ClusterServiceVersion) DeepCopyInto(out *ClusterServiceVersion) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	out.Status = in.Status
}

// DeepCopy creates a deep copy of ClusterServiceVersion.
func (in *ClusterServiceVersion) DeepCopy() *ClusterServiceVersion {
	if in == nil {
		return nil
	}

	out := new(ClusterServiceVersion)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *ClusterServiceVersion) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// ClusterServiceVersionList registers the list kind with the scheme for completeness.
type ClusterServiceVersionList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []ClusterServiceVersion `json:"items"`
}

// DeepCopyInto copies all properties into another ClusterServiceVersionList.
func (in *ClusterServiceVersionList) DeepCopyInto(out *ClusterServiceVersionList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]ClusterServiceVersion, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of ClusterServiceVersionList.
func (in *ClusterServiceVersionList) DeepCopy() *ClusterServiceVersionList {
	if in == nil {
		return nil
	}

	out := new(ClusterServiceVersionList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *ClusterServiceVersionList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// AddToScheme registers the Subscription and ClusterServiceVersion kinds with
// the provided scheme.
//
//nolint:unparam // error return kept for consistency with Kubernetes scheme registration patterns
func AddToScheme(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(
		GroupVersion,
		&Subscription{},
		&SubscriptionList{},
		&ClusterServiceVersion{},
		&ClusterServiceVersionList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)

	return nil
}
