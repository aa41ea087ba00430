package resources

import (
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
)

// StackLabels returns the labels a stack's managed resources carry. Teardown
// selects on them, so the set must stay stable across releases.
func StackLabels(stack v1alpha1.MonitoringType) map[string]string {
	return map[string]string{
		v1alpha1.AppLabelKey:   v1alpha1.AppLabelValue,
		v1alpha1.StackLabelKey: string(stack),
	}
}

// AppLabels returns the app label alone, for resources shared by both stacks.
func AppLabels() map[string]string {
	return map[string]string{v1alpha1.AppLabelKey: v1alpha1.AppLabelValue}
}

// ServiceMonitorName returns the stack's ServiceMonitor name.
func ServiceMonitorName(stack v1alpha1.MonitoringType) string {
	if stack == v1alpha1.TypeUWM {
		return v1alpha1.UWMServiceMonitorName
	}

	return v1alpha1.COOServiceMonitorName
}

// PrometheusRuleName returns the stack's PrometheusRule name.
func PrometheusRuleName(stack v1alpha1.MonitoringType) string {
	if stack == v1alpha1.TypeUWM {
		return v1alpha1.UWMPrometheusRuleName
	}

	return v1alpha1.COOPrometheusRuleName
}

// NetworkPolicyName returns the stack's NetworkPolicy name.
func NetworkPolicyName(stack v1alpha1.MonitoringType) string {
	if stack == v1alpha1.TypeUWM {
		return v1alpha1.UWMNetworkPolicyName
	}

	return v1alpha1.COONetworkPolicyName
}

func appSelector() metav1.LabelSelector {
	return metav1.LabelSelector{MatchLabels: AppLabels()}
}

// serviceMonitorSpec describes the one scrape endpoint both backends share.
func serviceMonitorSpec() promopv1.ServiceMonitorSpec {
	return promopv1.ServiceMonitorSpec{
		Selector: appSelector(),
		Endpoints: []promopv1.Endpoint{{
			Port:     v1alpha1.MetricsPortName,
			Path:     "/metrics",
			Interval: "30s",
		}},
	}
}

// ruleGroups returns the alerting rules evaluated over the exporter's
// metric families.
func ruleGroups() []promopv1.RuleGroup {
	return []promopv1.RuleGroup{{
		Name: "eip-monitor.alerts",
		Rules: []promopv1.Rule{
			{
				Alert:  "EIPMonitorAbsent",
				Expr:   "absent(cluster_eip_health_score)",
				For:    "5m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "EIP monitor metrics are absent",
					"description": "No cluster_eip_health_score samples for 5 minutes. The exporter is down or not being scraped.",
				},
			},
			{
				Alert:  "EIPHealthScoreLow",
				Expr:   "cluster_eip_health_score < 50",
				For:    "10m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Egress IP health is degraded",
					"description": "The cluster EIP health score has stayed below 50 for 10 minutes. Check unassigned EIPs and CloudPrivateIPConfig errors.",
				},
			},
			{
				Alert:  "EIPsUnassigned",
				Expr:   "eips_unassigned_total > 0",
				For:    "10m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Egress IPs without a node assignment",
					"description": "{{ $value }} configured egress IPs are not assigned to any node. Affected workloads fall back to node IPs for egress.",
				},
			},
			{
				Alert:  "CPICErrors",
				Expr:   "cpic_error_total > 0",
				For:    "5m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "CloudPrivateIPConfig errors",
					"description": "{{ $value }} CloudPrivateIPConfig objects report an error condition. Cloud IP assignment is failing.",
				},
			},
			{
				Alert:  "EIPUtilizationHigh",
				Expr:   "eip_utilization_percent > 90",
				For:    "10m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Egress IP capacity nearly exhausted",
					"description": "More than 90% of assignable egress IP capacity is in use. Label additional nodes as egress-assignable.",
				},
			},
		},
	}}
}

// cooScrapePeers admits the observability-operator-managed Prometheus, which
// runs in the workload namespace itself.
func cooScrapePeers() []networkingv1.NetworkPolicyPeer {
	return []networkingv1.NetworkPolicyPeer{{
		PodSelector: &metav1.LabelSelector{
			MatchLabels: map[string]string{v1alpha1.ManagedByLabelKey: v1alpha1.COOManagedByValue},
		},
	}}
}

// uwmScrapePeers admits pods from the platform's user workload monitoring
// namespace.
func uwmScrapePeers() []networkingv1.NetworkPolicyPeer {
	return []networkingv1.NetworkPolicyPeer{{
		NamespaceSelector: &metav1.LabelSelector{
			MatchLabels: map[string]string{
				corev1.LabelMetadataName: v1alpha1.NamespaceUserWorkloadMonitoring,
			},
		},
	}}
}

func scrapePeers(stack v1alpha1.MonitoringType) []networkingv1.NetworkPolicyPeer {
	if stack == v1alpha1.TypeUWM {
		return uwmScrapePeers()
	}

	return cooScrapePeers()
}

// networkPolicySpec admits ingress from the given peers to the metrics port
// and nothing else.
func networkPolicySpec(peers []networkingv1.NetworkPolicyPeer) networkingv1.NetworkPolicySpec {
	protocol := corev1.ProtocolTCP
	port := intstr.FromInt32(v1alpha1.MetricsPort)

	return networkingv1.NetworkPolicySpec{
		PodSelector: appSelector(),
		PolicyTypes: []networkingv1.PolicyType{networkingv1.PolicyTypeIngress},
		Ingress: []networkingv1.NetworkPolicyIngressRule{{
			From: peers,
			Ports: []networkingv1.NetworkPolicyPort{{
				Protocol: &protocol,
				Port:     &port,
			}},
		}},
	}
}
