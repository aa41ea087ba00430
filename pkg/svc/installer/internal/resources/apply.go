package resources

import (
	"context"
	"fmt"
	"io"

	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// ApplyScrapeResources upserts everything that lets the stack's Prometheus
// scrape the workload: the ServiceMonitor, the PrometheusRule, the stack's
// NetworkPolicy and the combined policy shared with the other stack.
func ApplyScrapeResources(
	ctx context.Context,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	namespace string,
	stack v1alpha1.MonitoringType,
	out io.Writer,
) error {
	serviceMonitor := &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: ServiceMonitorName(stack), Namespace: namespace},
	}

	err := k8s.Upsert(ctx, crClient, serviceMonitor, func() error {
		serviceMonitor.Labels = StackLabels(stack)
		serviceMonitor.Spec = serviceMonitorSpec()

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply service monitor: %w", err)
	}

	notify.Activityf(out, "applied service monitor '%s'", ServiceMonitorName(stack))

	rule := &promopv1.PrometheusRule{
		ObjectMeta: metav1.ObjectMeta{Name: PrometheusRuleName(stack), Namespace: namespace},
	}

	err = k8s.Upsert(ctx, crClient, rule, func() error {
		rule.Labels = StackLabels(stack)
		rule.Spec = promopv1.PrometheusRuleSpec{Groups: ruleGroups()}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply prometheus rule: %w", err)
	}

	notify.Activityf(out, "applied prometheus rule '%s'", PrometheusRuleName(stack))

	policy := &networkingv1.NetworkPolicy{
		ObjectMeta: metav1.ObjectMeta{
			Name:      NetworkPolicyName(stack),
			Namespace: namespace,
			Labels:    StackLabels(stack),
		},
		Spec: networkPolicySpec(scrapePeers(stack)),
	}

	if err := applyNetworkPolicy(ctx, clientset, policy); err != nil {
		return err
	}

	notify.Activityf(out, "applied network policy '%s'", NetworkPolicyName(stack))

	if err := ApplyCombinedNetworkPolicy(ctx, clientset, namespace); err != nil {
		return err
	}

	notify.Activityf(out, "applied network policy '%s'", v1alpha1.CombinedNetworkPolicyName)

	return nil
}

// ApplyCombinedNetworkPolicy ensures the shared policy admitting scrapes from
// either Prometheus. Both installers apply it; only the teardown of the last
// remaining stack removes it. It carries the app label but no stack label so
// stack-scoped teardown leaves it alone.
func ApplyCombinedNetworkPolicy(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
) error {
	policy := &networkingv1.NetworkPolicy{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.CombinedNetworkPolicyName,
			Namespace: namespace,
			Labels:    AppLabels(),
		},
		Spec: networkPolicySpec(append(cooScrapePeers(), uwmScrapePeers()...)),
	}

	return applyNetworkPolicy(ctx, clientset, policy)
}

// applyNetworkPolicy creates the policy or overwrites the live copy's labels
// and spec. NetworkPolicies are core resources, so they go through the typed
// clientset rather than the custom resource client.
func applyNetworkPolicy(
	ctx context.Context,
	clientset kubernetes.Interface,
	policy *networkingv1.NetworkPolicy,
) error {
	policies := clientset.NetworkingV1().NetworkPolicies(policy.Namespace)

	existing, err := policies.Get(ctx, policy.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, createErr := policies.Create(ctx, policy, metav1.CreateOptions{})
		if createErr != nil {
			return fmt.Errorf(
				"failed to create network policy %s/%s: %w",
				policy.Namespace, policy.Name, createErr,
			)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf(
			"failed to get network policy %s/%s: %w",
			policy.Namespace, policy.Name, err,
		)
	}

	existing.Labels = policy.Labels
	existing.Spec = policy.Spec

	_, err = policies.Update(ctx, existing, metav1.UpdateOptions{})
	if err != nil {
		return fmt.Errorf(
			"failed to update network policy %s/%s: %w",
			policy.Namespace, policy.Name, err,
		)
	}

	return nil
}
