package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	group   = "monitoring.rhobs"
	version = "v1alpha1"

	// AvailableCondition is the MonitoringStack condition type reporting readiness.
	AvailableCondition = "Available"
	// AvailableReason is the condition reason set once the stack is fully available.
	AvailableReason = "MonitoringStackAvailable"
)

// GroupVersion is the monitoring.rhobs/v1alpha1 API group version.
//
//nolint:gochecknoglobals // package-level constant for API version
var GroupVersion = schema.GroupVersion{Group: group, Version: version}

// MonitoringStack declares a Cluster-Observability-Operator-managed
// Prometheus and Alertmanager deployment.
type MonitoringStack struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec   MonitoringStackSpec   `json:"spec"`
	Status MonitoringStackStatus `json:"status,omitempty"`
}

// MonitoringStackSpec configures retention, resource discovery and storage.
type MonitoringStackSpec struct {
	LogLevel           string                `json:"logLevel,omitempty"`
	Retention          string                `json:"retention,omitempty"`
	ResourceSelector   *metav1.LabelSelector `json:"resourceSelector,omitempty"`
	PrometheusConfig   *PrometheusConfig     `json:"prometheusConfig,omitempty"`
	AlertmanagerConfig *AlertmanagerConfig   `json:"alertmanagerConfig,omitempty"`
}

// PrometheusConfig tunes the managed Prometheus instances.
type PrometheusConfig struct {
	Replicas              *int32                            `json:"replicas,omitempty"`
	PersistentVolumeClaim *corev1.PersistentVolumeClaimSpec `json:"persistentVolumeClaim,omitempty"`
}

// AlertmanagerConfig tunes the managed Alertmanager instances.
type AlertmanagerConfig struct {
	Disabled bool `json:"disabled,omitempty"`
}

// MonitoringStackStatus reports the operator's view of the stack.
type MonitoringStackStatus struct {
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// Available reports whether the operator marked the stack fully available.
func (in *MonitoringStack) Available() bool {
	for _, condition := range in.Status.Conditions {
		if condition.Type == AvailableCondition &&
			condition.Status == metav1.ConditionTrue &&
			condition.Reason == AvailableReason {
			return true
		}
	}

	return false
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *MonitoringStack) DeepCopyInto(out *MonitoringStack) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
	in.Status.DeepCopyInto(&out.Status)
}

// DeepCopy creates a deep copy of MonitoringStack.
func (in *MonitoringStack) DeepCopy() *MonitoringStack {
	if in == nil {
		return nil
	}

	out := new(MonitoringStack)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *MonitoringStack) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// DeepCopyInto copies all properties into another MonitoringStackSpec.
func (in *MonitoringStackSpec) DeepCopyInto(out *MonitoringStackSpec) {
	*out = *in

	if in.ResourceSelector != nil {
		out.ResourceSelector = in.ResourceSelector.DeepCopy()
	}

	if in.PrometheusConfig != nil {
		out.PrometheusConfig = new(PrometheusConfig)
		in.PrometheusConfig.DeepCopyInto(out.PrometheusConfig)
	}

	if in.AlertmanagerConfig != nil {
		alertmanagerCopy := *in.AlertmanagerConfig
		out.AlertmanagerConfig = &alertmanagerCopy
	}
}

// DeepCopyInto copies all properties into another PrometheusConfig.
func (in *PrometheusConfig) DeepCopyInto(out *PrometheusConfig) {
	*out = *in

	if in.Replicas != nil {
		replicasCopy := *in.Replicas
		out.Replicas = &replicasCopy
	}

	if in.PersistentVolumeClaim != nil {
		out.PersistentVolumeClaim = in.PersistentVolumeClaim.DeepCopy()
	}
}

// DeepCopyInto copies all properties into another MonitoringStackStatus.
func (in *MonitoringStackStatus) DeepCopyInto(out *MonitoringStackStatus) {
	*out = *in

	if in.Conditions != nil {
		out.Conditions = make([]metav1.Condition, len(in.Conditions))
		for i := range in.Conditions {
			in.Conditions[i].DeepCopyInto(&out.Conditions[i])
		}
	}
}

// MonitoringStackList registers the list kind with the scheme for completeness.
type MonitoringStackList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []MonitoringStack `json:"items"`
}

// DeepCopyInto copies all properties into another MonitoringStackList.
func (in *MonitoringStackList) DeepCopyInto(out *MonitoringStackList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]MonitoringStack, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of MonitoringStackList.
func (in *MonitoringStackList) DeepCopy() *MonitoringStackList {
	if in == nil {
		return nil
	}

	out := new(MonitoringStackList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *MonitoringStackList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// ThanosQuerier aggregates queries across the replicated Prometheus instances
// of a MonitoringStack.
type ThanosQuerier struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata"`

	Spec ThanosQuerierSpec `json:"spec"`
}

// ThanosQuerierSpec selects which MonitoringStacks to front.
type ThanosQuerierSpec struct {
	Selector          metav1.LabelSelector `json:"selector"`
	NamespaceSelector *NamespaceSelector   `json:"namespaceSelector,omitempty"`
	ReplicaLabels     []string             `json:"replicaLabels,omitempty"`
}

// NamespaceSelector picks the namespaces a ThanosQuerier queries.
type NamespaceSelector struct {
	Any        bool     `json:"any,omitempty"`
	MatchNames []string `json:"matchNames,omitempty"`
}

// DeepCopyInto copies all properties into another ThanosQuerierSpec.
func (in *ThanosQuerierSpec) DeepCopyInto(out *ThanosQuerierSpec) {
	*out = *in
	in.Selector.DeepCopyInto(&out.Selector)

	if in.NamespaceSelector != nil {
		out.NamespaceSelector = new(NamespaceSelector)
		in.NamespaceSelector.DeepCopyInto(out.NamespaceSelector)
	}

	if in.ReplicaLabels != nil {
		out.ReplicaLabels = make([]string, len(in.ReplicaLabels))
		copy(out.ReplicaLabels, in.ReplicaLabels)
	}
}

// DeepCopyInto copies all properties into another NamespaceSelector.
func (in *NamespaceSelector) DeepCopyInto(out *NamespaceSelector) {
	*out = *in

	if in.MatchNames != nil {
		out.MatchNames = make([]string, len(in.MatchNames))
		copy(out.MatchNames, in.MatchNames)
	}
}

// DeepCopyInto copies all properties of this object into another object of the same type.
func (in *ThanosQuerier) DeepCopyInto(out *ThanosQuerier) {
	*out = *in
	out.TypeMeta = in.TypeMeta
	in.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	in.Spec.DeepCopyInto(&out.Spec)
}

// DeepCopy creates a deep copy of ThanosQuerier.
func (in *ThanosQuerier) DeepCopy() *ThanosQuerier {
	if in == nil {
		return nil
	}

	out := new(ThanosQuerier)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *ThanosQuerier) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// ThanosQuerierList registers the list kind with the scheme for completeness.
type ThanosQuerierList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata"`

	Items []ThanosQuerier `json:"items"`
}

// DeepCopyInto copies all properties into another ThanosQuerierList.
func (in *ThanosQuerierList) DeepCopyInto(out *ThanosQuerierList) {
	*out = *in
	out.TypeMeta = in.TypeMeta

	in.ListMeta.DeepCopyInto(&out.ListMeta)

	if in.Items != nil {
		out.Items = make([]ThanosQuerier, len(in.Items))
		for i := range in.Items {
			in.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}

// DeepCopy creates a deep copy of ThanosQuerierList.
func (in *ThanosQuerierList) DeepCopy() *ThanosQuerierList {
	if in == nil {
		return nil
	}

	out := new(ThanosQuerierList)
	in.DeepCopyInto(out)

	return out
}

// DeepCopyObject implements runtime.Object interface.
func (in *ThanosQuerierList) DeepCopyObject() runtime.Object {
	if c := in.DeepCopy(); c != nil {
		return c
	}

	return nil
}

// AddToScheme registers the MonitoringStack and ThanosQuerier kinds with the
// provided scheme.
//
//nolint:unparam // error return kept for consistency with Kubernetes scheme registration patterns
func AddToScheme(scheme *runtime.Scheme) error {
	scheme.AddKnownTypes(
		GroupVersion,
		&MonitoringStack{},
		&MonitoringStackList{},
		&ThanosQuerier{},
		&ThanosQuerierList{},
	)
	metav1.AddToGroupVersion(scheme, GroupVersion)

	return nil
}
