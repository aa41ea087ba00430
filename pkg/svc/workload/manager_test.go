package workload_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/svc/workload"
)

const (
	testNamespace = "eip-monitor"
	testImage     = "quay.io/eip-monitor/eip-monitor:v1.2.3"
	testTimeout   = 50 * time.Millisecond
)

func newManager(clientset kubernetes.Interface, out *bytes.Buffer) *workload.Manager {
	opts := workload.Options{
		Namespace: testNamespace,
		Image:     testImage,
		LogLevel:  "debug",
	}

	return workload.NewManager(clientset, opts, testTimeout, out)
}

// convergedDeployment is a workload deployment whose rollout already
// finished, so readiness waits return immediately.
func convergedDeployment() *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadName,
			Namespace: testNamespace,
		},
		Status: appsv1.DeploymentStatus{
			UpdatedReplicas:   1,
			AvailableReplicas: 1,
		},
	}
}

func TestDeploy_CreatesWorkloadResources(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	var out bytes.Buffer

	require.NoError(t, newManager(clientset, &out).Deploy(context.Background()))

	ctx := context.Background()

	account, err := clientset.CoreV1().
		ServiceAccounts(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "eip-monitor", account.Labels["app"])

	configMap, err := clientset.CoreV1().
		ConfigMaps(testNamespace).
		Get(ctx, v1alpha1.WorkloadConfigName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "8080", configMap.Data["PORT"])
	assert.Equal(t, "30", configMap.Data["SCRAPE_INTERVAL"])
	assert.Equal(t, "debug", configMap.Data["LOG_LEVEL"])

	deployment, err := clientset.AppsV1().
		Deployments(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	require.NoError(t, err)

	require.Len(t, deployment.Spec.Template.Spec.Containers, 1)
	container := deployment.Spec.Template.Spec.Containers[0]
	assert.Equal(t, testImage, container.Image)
	require.Len(t, container.EnvFrom, 1)
	assert.Equal(t, v1alpha1.WorkloadConfigName, container.EnvFrom[0].ConfigMapRef.Name)
	require.Len(t, container.Ports, 1)
	assert.Equal(t, v1alpha1.MetricsPort, container.Ports[0].ContainerPort)
	assert.Equal(t, v1alpha1.MetricsPortName, container.Ports[0].Name)
	assert.Equal(t, "/health", container.ReadinessProbe.HTTPGet.Path)
	assert.Equal(t, v1alpha1.WorkloadName, deployment.Spec.Template.Spec.ServiceAccountName)
	assert.Equal(t, "eip-monitor", deployment.Spec.Selector.MatchLabels["app"])

	service, err := clientset.CoreV1().
		Services(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	require.NoError(t, err)
	require.Len(t, service.Spec.Ports, 1)
	assert.Equal(t, v1alpha1.MetricsPort, service.Spec.Ports[0].Port)
	assert.Equal(t, v1alpha1.MetricsPortName, service.Spec.Ports[0].TargetPort.String())
	assert.Equal(t, "eip-monitor", service.Spec.Selector["app"])

	assert.Contains(t, out.String(), "applied deployment 'eip-monitor'")
}

func TestDeploy_CreatesTheNamespace(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()

	require.NoError(t, newManager(clientset, &bytes.Buffer{}).Deploy(context.Background()))

	_, err := clientset.CoreV1().
		Namespaces().
		Get(context.Background(), testNamespace, metav1.GetOptions{})
	assert.NoError(t, err)
}

func TestDeploy_RolloutTimeoutWarnsAndContinues(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	var out bytes.Buffer

	err := newManager(clientset, &out).Deploy(context.Background())

	require.NoError(t, err, "a slow rollout is not a deploy failure")
	assert.Contains(t, out.String(), "not ready after 50ms, continuing")
	assert.NotContains(t, out.String(), "workload deployed")
}

func TestDeploy_ConvergedRolloutReportsSuccess(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(convergedDeployment())
	var out bytes.Buffer

	require.NoError(t, newManager(clientset, &out).Deploy(context.Background()))

	assert.Contains(t, out.String(), "workload deployed to namespace 'eip-monitor'")
	assert.NotContains(t, out.String(), "⚠")
}

func TestDeploy_UpdatesExistingResources(t *testing.T) {
	t.Parallel()

	stale := convergedDeployment()
	stale.Spec.Template.Spec.Containers = []corev1.Container{{
		Name:  v1alpha1.WorkloadName,
		Image: "quay.io/eip-monitor/eip-monitor:v1.0.0",
	}}

	clientset := fake.NewClientset(stale, &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadConfigName,
			Namespace: testNamespace,
		},
		Data: map[string]string{"LOG_LEVEL": "warn", "stray": "value"},
	})

	require.NoError(t, newManager(clientset, &bytes.Buffer{}).Deploy(context.Background()))

	deployment, err := clientset.AppsV1().
		Deployments(testNamespace).
		Get(context.Background(), v1alpha1.WorkloadName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, testImage, deployment.Spec.Template.Spec.Containers[0].Image)

	configMap, err := clientset.CoreV1().
		ConfigMaps(testNamespace).
		Get(context.Background(), v1alpha1.WorkloadConfigName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "debug", configMap.Data["LOG_LEVEL"])
	assert.NotContains(t, configMap.Data, "stray", "the rendered environment replaces stale keys")
}

func TestDeploy_PreservesServiceClusterIP(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(&corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.WorkloadName,
			Namespace: testNamespace,
		},
		Spec: corev1.ServiceSpec{
			ClusterIP: "172.30.99.7",
			Ports:     []corev1.ServicePort{{Name: "http", Port: 9999, TargetPort: intstr.FromInt32(9999)}},
		},
	})

	require.NoError(t, newManager(clientset, &bytes.Buffer{}).Deploy(context.Background()))

	service, err := clientset.CoreV1().
		Services(testNamespace).
		Get(context.Background(), v1alpha1.WorkloadName, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "172.30.99.7", service.Spec.ClusterIP)
	require.Len(t, service.Spec.Ports, 1)
	assert.Equal(t, v1alpha1.MetricsPort, service.Spec.Ports[0].Port)
}

func TestClean_RemovesWorkloadResources(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		convergedDeployment(),
		&corev1.ServiceAccount{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.WorkloadName, Namespace: testNamespace,
		}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.WorkloadConfigName, Namespace: testNamespace,
		}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.WorkloadName, Namespace: testNamespace,
		}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
			Name: "unrelated", Namespace: testNamespace,
		}},
	)
	var out bytes.Buffer

	require.NoError(t, newManager(clientset, &out).Clean(context.Background()))

	ctx := context.Background()

	_, err := clientset.AppsV1().
		Deployments(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().
		Services(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().
		ConfigMaps(testNamespace).
		Get(ctx, v1alpha1.WorkloadConfigName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().
		ServiceAccounts(testNamespace).
		Get(ctx, v1alpha1.WorkloadName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))

	_, err = clientset.CoreV1().
		ConfigMaps(testNamespace).
		Get(ctx, "unrelated", metav1.GetOptions{})
	assert.NoError(t, err, "resources this tool does not own stay put")

	assert.Contains(t, out.String(), "workload removed from namespace 'eip-monitor'")
}

func TestClean_NothingToRemoveIsANoOp(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, newManager(fake.NewClientset(), &out).Clean(context.Background()))

	assert.Contains(t, out.String(), "no workload resources found in namespace 'eip-monitor'")
	assert.NotContains(t, out.String(), "workload removed")
}
