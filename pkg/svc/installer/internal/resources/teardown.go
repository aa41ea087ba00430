package resources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// DeleteScrapeResources removes the stack's ServiceMonitor, PrometheusRule
// and NetworkPolicy. Resources are matched by label first, then by their
// well-known names so installs predating the labels are still cleaned up.
// The combined NetworkPolicy is not touched; it belongs to whichever stack
// remains.
func DeleteScrapeResources(
	ctx context.Context,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	namespace string,
	stack v1alpha1.MonitoringType,
) error {
	stackLabels := StackLabels(stack)

	var errs []error

	err := k8s.DeleteAllByLabels(ctx, crClient, &promopv1.ServiceMonitor{}, namespace, stackLabels)
	if err != nil {
		errs = append(errs, err)
	}

	serviceMonitor := &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: ServiceMonitorName(stack), Namespace: namespace},
	}
	if err := k8s.Delete(ctx, crClient, serviceMonitor); err != nil {
		errs = append(errs, err)
	}

	err = k8s.DeleteAllByLabels(ctx, crClient, &promopv1.PrometheusRule{}, namespace, stackLabels)
	if err != nil {
		errs = append(errs, err)
	}

	rule := &promopv1.PrometheusRule{
		ObjectMeta: metav1.ObjectMeta{Name: PrometheusRuleName(stack), Namespace: namespace},
	}
	if err := k8s.Delete(ctx, crClient, rule); err != nil {
		errs = append(errs, err)
	}

	if err := deleteNetworkPoliciesByLabels(ctx, clientset, namespace, stackLabels); err != nil {
		errs = append(errs, err)
	}

	err = deleteNetworkPolicy(ctx, clientset, namespace, NetworkPolicyName(stack))
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// DeleteCombinedNetworkPolicy removes the policy shared by both stacks.
// Callers must have verified the other stack is gone first.
func DeleteCombinedNetworkPolicy(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
) error {
	return deleteNetworkPolicy(ctx, clientset, namespace, v1alpha1.CombinedNetworkPolicyName)
}

func deleteNetworkPoliciesByLabels(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	selector map[string]string,
) error {
	policies := clientset.NetworkingV1().NetworkPolicies(namespace)

	list, err := policies.List(ctx, metav1.ListOptions{
		LabelSelector: labels.SelectorFromSet(selector).String(),
	})
	if err != nil {
		return fmt.Errorf("failed to list network policies in %s: %w", namespace, err)
	}

	for _, policy := range list.Items {
		if err := deleteNetworkPolicy(ctx, clientset, namespace, policy.Name); err != nil {
			return err
		}
	}

	return nil
}

func deleteNetworkPolicy(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, name string,
) error {
	err := clientset.NetworkingV1().NetworkPolicies(namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to delete network policy %s/%s: %w", namespace, name, err)
	}

	return nil
}

// DeletePrometheusPVCs deletes the claims a Prometheus left behind, matched
// by name prefix. Callers gate this on the explicit delete-persistent-storage
// flag; metric history is retained otherwise.
func DeletePrometheusPVCs(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace, prefix string,
	out io.Writer,
) error {
	claims := clientset.CoreV1().PersistentVolumeClaims(namespace)

	list, err := claims.List(ctx, metav1.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list persistent volume claims in %s: %w", namespace, err)
	}

	for _, claim := range list.Items {
		if !strings.HasPrefix(claim.Name, prefix) {
			continue
		}

		err := claims.Delete(ctx, claim.Name, metav1.DeleteOptions{})
		if err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf(
				"failed to delete persistent volume claim %s/%s: %w",
				namespace, claim.Name, err,
			)
		}

		notify.Activityf(out, "deleted persistent volume claim '%s'", claim.Name)
	}

	return nil
}
