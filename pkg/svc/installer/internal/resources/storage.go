package resources

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// DetectDefaultStorageClass returns the name of the cluster's default
// StorageClass, or empty when no class carries the default annotation.
func DetectDefaultStorageClass(
	ctx context.Context,
	clientset kubernetes.Interface,
) (string, error) {
	classes, err := clientset.StorageV1().StorageClasses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to list storage classes: %w", err)
	}

	for _, class := range classes.Items {
		if class.Annotations[v1alpha1.DefaultStorageClassAnnotation] == "true" {
			return class.Name, nil
		}
	}

	return "", nil
}

// BuildClaimSpec renders the Prometheus volume claim both persistence paths
// share. An empty class means autodetect the cluster default; if nothing is
// marked default the claim carries no class and the cluster decides at bind
// time.
func BuildClaimSpec(
	ctx context.Context,
	clientset kubernetes.Interface,
	class, size string,
	out io.Writer,
) (*corev1.PersistentVolumeClaimSpec, error) {
	quantity, err := resource.ParseQuantity(size)
	if err != nil {
		return nil, fmt.Errorf("invalid storage size %q: %w", size, err)
	}

	if class == "" {
		detected, err := DetectDefaultStorageClass(ctx, clientset)
		if err != nil {
			notify.Warningf(out, "could not detect the default storage class: %v", err)
		} else if detected != "" {
			notify.Infof(out, "using default storage class '%s'", detected)

			class = detected
		}
	}

	claim := &corev1.PersistentVolumeClaimSpec{
		AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
		Resources: corev1.VolumeResourceRequirements{
			Requests: corev1.ResourceList{corev1.ResourceStorage: quantity},
		},
	}

	if class != "" {
		claim.StorageClassName = &class
	}

	return claim, nil
}
