package detector

import (
	"context"
	"errors"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	obsopsv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/obsops/v1alpha1"
	olmv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
)

// ErrNoClients is returned when the detector was constructed without the
// clients it needs. This is the only way Detect can fail.
var ErrNoClients = errors.New("detector requires kubernetes and custom resource clients")

// Detector probes the cluster for installed monitoring backends by querying
// the Kubernetes API for the namespace-scoped resources each backend owns.
type Detector struct {
	clientset kubernetes.Interface
	crClient  ctrlclient.Client
}

// NewDetector creates a detector with the required clients.
func NewDetector(clientset kubernetes.Interface, crClient ctrlclient.Client) *Detector {
	return &Detector{
		clientset: clientset,
		crClient:  crClient,
	}
}

// Detect takes a fresh snapshot of the monitoring state in the given
// namespace. Classification is strictly namespace-corroborated: a backend
// counts as installed only when its own resources exist in the namespace.
// Cluster-wide signals (the enableUserWorkload flag, the operator
// Subscription) are recorded for display and install planning but never
// classify on their own.
//
// Every probe treats any lookup failure, including RBAC denials and missing
// CRDs, as "resource absent"; the error return fires only for a detector
// constructed without clients.
func (d *Detector) Detect(ctx context.Context, namespace string) (v1alpha1.Observation, error) {
	if d.clientset == nil || d.crClient == nil {
		return v1alpha1.Observation{}, ErrNoClients
	}

	return v1alpha1.Observation{
		Namespace:           namespace,
		MonitoringStack:     d.monitoringStackExists(ctx, namespace),
		COOServiceMonitor:   d.serviceMonitorExists(ctx, namespace, v1alpha1.COOServiceMonitorName),
		COOSubscription:     d.subscriptionExists(ctx),
		UWMServiceMonitor:   d.serviceMonitorExists(ctx, namespace, v1alpha1.UWMServiceMonitorName),
		UWMPrometheusRule:   d.prometheusRuleExists(ctx, namespace, v1alpha1.UWMPrometheusRuleName),
		UWMNetworkPolicy:    d.networkPolicyExists(ctx, namespace, v1alpha1.UWMNetworkPolicyName),
		UserWorkloadEnabled: d.userWorkloadEnabled(ctx),
	}, nil
}

// monitoringStackExists checks for the MonitoringStack custom resource.
// Any error (including not-found and an uninstalled CRD) means absent.
func (d *Detector) monitoringStackExists(ctx context.Context, namespace string) bool {
	stack := &obsopsv1alpha1.MonitoringStack{}

	err := d.crClient.Get(
		ctx,
		ctrlclient.ObjectKey{Namespace: namespace, Name: v1alpha1.MonitoringStackName},
		stack,
	)

	return err == nil
}

// serviceMonitorExists checks for a ServiceMonitor with the given name.
func (d *Detector) serviceMonitorExists(ctx context.Context, namespace, name string) bool {
	monitor := &promopv1.ServiceMonitor{}

	err := d.crClient.Get(
		ctx,
		ctrlclient.ObjectKey{Namespace: namespace, Name: name},
		monitor,
	)

	return err == nil
}

// prometheusRuleExists checks for a PrometheusRule with the given name.
func (d *Detector) prometheusRuleExists(ctx context.Context, namespace, name string) bool {
	rule := &promopv1.PrometheusRule{}

	err := d.crClient.Get(
		ctx,
		ctrlclient.ObjectKey{Namespace: namespace, Name: name},
		rule,
	)

	return err == nil
}

// networkPolicyExists checks for a NetworkPolicy with the given name.
func (d *Detector) networkPolicyExists(ctx context.Context, namespace, name string) bool {
	_, err := d.clientset.NetworkingV1().NetworkPolicies(namespace).Get(
		ctx, name, metav1.GetOptions{},
	)

	return err == nil
}

// subscriptionExists checks for the observability operator Subscription in
// its operator namespace. Presence means the operator is installed, not that
// a stack is configured.
func (d *Detector) subscriptionExists(ctx context.Context) bool {
	subscription := &olmv1alpha1.Subscription{}

	err := d.crClient.Get(
		ctx,
		ctrlclient.ObjectKey{
			Namespace: v1alpha1.NamespaceCOOOperator,
			Name:      v1alpha1.COOSubscriptionName,
		},
		subscription,
	)

	return err == nil
}

// clusterMonitoringConfig mirrors the top level of the cluster monitoring
// ConfigMap payload. Only the flag this tool reads is declared.
type clusterMonitoringConfig struct {
	EnableUserWorkload bool `json:"enableUserWorkload"`
}

// userWorkloadEnabled reads the cluster-wide enableUserWorkload flag. A
// missing ConfigMap, missing key, unparsable payload, or denied read all
// report false.
func (d *Detector) userWorkloadEnabled(ctx context.Context) bool {
	configMap, err := d.clientset.CoreV1().
		ConfigMaps(v1alpha1.NamespaceOpenShiftMonitoring).
		Get(ctx, v1alpha1.ClusterMonitoringConfigName, metav1.GetOptions{})
	if err != nil {
		return false
	}

	raw, ok := configMap.Data[v1alpha1.MonitoringConfigKey]
	if !ok {
		return false
	}

	var config clusterMonitoringConfig

	err = yaml.Unmarshal([]byte(raw), &config)
	if err != nil {
		return false
	}

	return config.EnableUserWorkload
}
