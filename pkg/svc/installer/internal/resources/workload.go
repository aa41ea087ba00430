package resources

import (
	"context"
	"fmt"
	"io"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// LabelWorkload ensures the exporter's Deployment and Service carry the app
// label the scrape selectors match. A missing workload is reported but is not
// an error; monitoring may be set up before the first deploy.
func LabelWorkload(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	out io.Writer,
) error {
	deployment, err := clientset.AppsV1().
		Deployments(namespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})

	switch {
	case apierrors.IsNotFound(err):
		notify.Warningf(out, "deployment '%s' not found in namespace '%s'", v1alpha1.WorkloadName, namespace)
		notify.Hintf(out, "run 'eipmon deploy' to create the workload; it is deployed with the scrape label already set")
	case err != nil:
		return fmt.Errorf("failed to get deployment %s: %w", v1alpha1.WorkloadName, err)
	default:
		if ensureAppLabel(&deployment.ObjectMeta) {
			_, err := clientset.AppsV1().Deployments(namespace).Update(ctx, deployment, metav1.UpdateOptions{})
			if err != nil {
				return fmt.Errorf("failed to label deployment %s: %w", v1alpha1.WorkloadName, err)
			}
		}
	}

	service, err := clientset.CoreV1().
		Services(namespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})

	switch {
	case apierrors.IsNotFound(err):
		notify.Warningf(out, "service '%s' not found in namespace '%s'", v1alpha1.WorkloadName, namespace)
	case err != nil:
		return fmt.Errorf("failed to get service %s: %w", v1alpha1.WorkloadName, err)
	default:
		if ensureAppLabel(&service.ObjectMeta) {
			_, err := clientset.CoreV1().Services(namespace).Update(ctx, service, metav1.UpdateOptions{})
			if err != nil {
				return fmt.Errorf("failed to label service %s: %w", v1alpha1.WorkloadName, err)
			}
		}
	}

	return nil
}

// ensureAppLabel reports whether the label had to be added or corrected.
func ensureAppLabel(meta *metav1.ObjectMeta) bool {
	if meta.Labels[v1alpha1.AppLabelKey] == v1alpha1.AppLabelValue {
		return false
	}

	if meta.Labels == nil {
		meta.Labels = map[string]string{}
	}

	meta.Labels[v1alpha1.AppLabelKey] = v1alpha1.AppLabelValue

	return true
}
