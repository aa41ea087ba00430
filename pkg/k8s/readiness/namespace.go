package readiness

import (
	"context"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForNamespaceActive polls until the named namespace exists and reports
// phase Active. Used after flipping on user workload monitoring, where the
// cluster monitoring operator creates its namespace asynchronously.
func WaitForNamespaceActive(
	ctx context.Context,
	clientset kubernetes.Interface,
	name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		namespace, err := clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return namespace.Status.Phase == corev1.NamespaceActive, nil
	})
}
