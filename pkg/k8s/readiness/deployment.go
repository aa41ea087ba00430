package readiness

import (
	"context"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// WaitForDeploymentReady polls until the deployment's observed generation has
// caught up and every desired replica is updated and available. This is the
// rollout gate used after applying a new image tag.
func WaitForDeploymentReady(
	ctx context.Context,
	clientset kubernetes.Interface,
	namespace string,
	name string,
	deadline time.Duration,
) error {
	return PollForReadiness(ctx, deadline, func(ctx context.Context) (bool, error) {
		deployment, err := clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			// Continue polling on transient errors
			return false, nil //nolint:nilerr // returning nil to continue polling
		}

		return isDeploymentReady(deployment), nil
	})
}

// isDeploymentReady returns true once the rollout has converged on the
// desired replica count.
func isDeploymentReady(deployment *appsv1.Deployment) bool {
	desired := int32(1)
	if deployment.Spec.Replicas != nil {
		desired = *deployment.Spec.Replicas
	}

	if deployment.Status.ObservedGeneration < deployment.Generation {
		return false
	}

	return deployment.Status.UpdatedReplicas >= desired &&
		deployment.Status.AvailableReplicas >= desired
}
