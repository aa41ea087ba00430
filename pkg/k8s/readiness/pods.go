package readiness

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForPodsRunning polls until at least minCount pods matching the label
// selector are in phase Running. Used after creating a MonitoringStack to
// wait for its Prometheus pods.
func WaitForPodsRunning(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	labelSelector string,
	minCount int,
	deadline time.Duration,
) error {
	if minCount < 1 {
		minCount = 1
	}

	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		pods, err := clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{
			LabelSelector: labelSelector,
		})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		running := 0

		for i := range pods.Items {
			if pods.Items[i].Status.Phase == corev1.PodRunning {
				running++
			}
		}

		return running >= minCount, nil
	})
}
