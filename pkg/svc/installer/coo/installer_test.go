package cooinstaller_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	storagev1 "k8s.io/api/storage/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	obsopsv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/obsops/v1alpha1"
	olmv1alpha1 "github.com/eip-monitor/eipmon/pkg/apis/olm/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	cooinstaller "github.com/eip-monitor/eipmon/pkg/svc/installer/coo"
)

const (
	testNamespace = "eip-monitor"
	testCSVName   = "cluster-observability-operator.v1.2.0"
	testTimeout   = 50 * time.Millisecond
)

func newCRClient(t *testing.T, objects ...ctrlclient.Object) ctrlclient.Client {
	t.Helper()

	return ctrlfake.NewClientBuilder().
		WithScheme(k8s.NewScheme()).
		WithObjects(objects...).
		Build()
}

func readySubscription() *olmv1alpha1.Subscription {
	return &olmv1alpha1.Subscription{
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.COOSubscriptionName,
			Namespace: v1alpha1.NamespaceCOOOperator,
		},
		Status: olmv1alpha1.SubscriptionStatus{
			State:        olmv1alpha1.SubscriptionStateAtLatestKnown,
			InstalledCSV: testCSVName,
		},
	}
}

func succeededCSV() *olmv1alpha1.ClusterServiceVersion {
	return &olmv1alpha1.ClusterServiceVersion{
		ObjectMeta: metav1.ObjectMeta{
			Name:      testCSVName,
			Namespace: v1alpha1.NamespaceCOOOperator,
		},
		Status: olmv1alpha1.ClusterServiceVersionStatus{Phase: olmv1alpha1.CSVPhaseSucceeded},
	}
}

func establishedStackCRD() *apiextensionsv1.CustomResourceDefinition {
	return &apiextensionsv1.CustomResourceDefinition{
		ObjectMeta: metav1.ObjectMeta{Name: v1alpha1.MonitoringStackCRDName},
		Status: apiextensionsv1.CustomResourceDefinitionStatus{
			Conditions: []apiextensionsv1.CustomResourceDefinitionCondition{
				{Type: apiextensionsv1.Established, Status: apiextensionsv1.ConditionTrue},
			},
		},
	}
}

func runningPrometheusPod() *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "prometheus-eip-monitoring-stack-0",
			Namespace: testNamespace,
			Labels:    map[string]string{"app.kubernetes.io/managed-by": "observability-operator"},
		},
		Status: corev1.PodStatus{Phase: corev1.PodRunning},
	}
}

func workloadObjects() []runtime.Object {
	return []runtime.Object{
		&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{
			Name: "eip-monitor", Namespace: testNamespace,
		}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{
			Name: "eip-monitor", Namespace: testNamespace,
		}},
	}
}

func getStack(t *testing.T, crClient ctrlclient.Client) *obsopsv1alpha1.MonitoringStack {
	t.Helper()

	stack := &obsopsv1alpha1.MonitoringStack{}
	err := crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: testNamespace, Name: v1alpha1.MonitoringStackName,
	}, stack)
	require.NoError(t, err)

	return stack
}

func TestName(t *testing.T) {
	t.Parallel()

	installer := cooinstaller.NewInstaller(
		fake.NewClientset(), newCRClient(t), cooinstaller.Options{}, testTimeout, &bytes.Buffer{},
	)

	assert.Equal(t, "coo", installer.Name())
}

func TestInstall_AppliesOperatorStackAndScrapeResources(t *testing.T) {
	t.Parallel()

	seeded := append(workloadObjects(), runningPrometheusPod())
	clientset := fake.NewClientset(seeded...)
	crClient := newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD())
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, crClient, cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	require.NoError(t, installer.Install(context.Background()))

	_, err := clientset.CoreV1().
		Namespaces().
		Get(context.Background(), v1alpha1.NamespaceCOOOperator, metav1.GetOptions{})
	assert.NoError(t, err, "the operator namespace is created")

	subscription := &olmv1alpha1.Subscription{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: v1alpha1.NamespaceCOOOperator, Name: v1alpha1.COOSubscriptionName,
	}, subscription)
	require.NoError(t, err)
	assert.Equal(t, "cluster-observability-operator", subscription.Spec.Package)
	assert.Equal(t, "stable", subscription.Spec.Channel)
	assert.Equal(t, "redhat-operators", subscription.Spec.Source)
	assert.Equal(t, "openshift-marketplace", subscription.Spec.SourceNamespace)

	stack := getStack(t, crClient)
	require.NotNil(t, stack.Spec.ResourceSelector)
	assert.Equal(t, map[string]string{"app": "eip-monitor"}, stack.Spec.ResourceSelector.MatchLabels)
	require.NotNil(t, stack.Spec.PrometheusConfig)
	assert.Nil(t, stack.Spec.PrometheusConfig.PersistentVolumeClaim, "ephemeral storage by default")

	serviceMonitor := &promopv1.ServiceMonitor{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: testNamespace, Name: v1alpha1.COOServiceMonitorName,
	}, serviceMonitor)
	assert.NoError(t, err)

	querier := &obsopsv1alpha1.ThanosQuerier{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: testNamespace, Name: v1alpha1.ThanosQuerierName,
	}, querier)
	assert.NoError(t, err)

	deployment, err := clientset.AppsV1().
		Deployments(testNamespace).
		Get(context.Background(), "eip-monitor", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "eip-monitor", deployment.Labels["app"], "the workload is labeled for scraping")

	assert.Contains(t, out.String(), "coo monitoring configured")
	assert.NotContains(t, out.String(), "⚠")
}

func TestInstall_PersistentUsesRequestedStorageClass(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(runningPrometheusPod())
	crClient := newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD())
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(clientset, crClient, cooinstaller.Options{
		Namespace:    testNamespace,
		Persistent:   true,
		StorageClass: "fast-ssd",
		StorageSize:  "20Gi",
	}, testTimeout, &out)

	require.NoError(t, installer.Install(context.Background()))

	claim := getStack(t, crClient).Spec.PrometheusConfig.PersistentVolumeClaim
	require.NotNil(t, claim)
	require.NotNil(t, claim.StorageClassName)
	assert.Equal(t, "fast-ssd", *claim.StorageClassName)
	assert.Equal(t, "20Gi", claim.Resources.Requests.Storage().String())
}

func TestInstall_PersistentAutodetectsDefaultStorageClass(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		runningPrometheusPod(),
		&storagev1.StorageClass{ObjectMeta: metav1.ObjectMeta{
			Name: "gp3-csi",
			Annotations: map[string]string{
				"storageclass.kubernetes.io/is-default-class": "true",
			},
		}},
	)
	crClient := newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD())
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(clientset, crClient, cooinstaller.Options{
		Namespace:   testNamespace,
		Persistent:  true,
		StorageSize: "10Gi",
	}, testTimeout, &out)

	require.NoError(t, installer.Install(context.Background()))

	claim := getStack(t, crClient).Spec.PrometheusConfig.PersistentVolumeClaim
	require.NotNil(t, claim)
	require.NotNil(t, claim.StorageClassName)
	assert.Equal(t, "gp3-csi", *claim.StorageClassName)
	assert.Contains(t, out.String(), "using default storage class 'gp3-csi'")
}

func TestInstall_PersistentWithoutDefaultClassLeavesClassUnset(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(runningPrometheusPod())
	crClient := newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD())
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(clientset, crClient, cooinstaller.Options{
		Namespace:   testNamespace,
		Persistent:  true,
		StorageSize: "10Gi",
	}, testTimeout, &out)

	require.NoError(t, installer.Install(context.Background()))

	claim := getStack(t, crClient).Spec.PrometheusConfig.PersistentVolumeClaim
	require.NotNil(t, claim)
	assert.Nil(t, claim.StorageClassName, "the cluster decides at bind time")
}

func TestInstall_InvalidStorageSizeFails(t *testing.T) {
	t.Parallel()

	installer := cooinstaller.NewInstaller(
		fake.NewClientset(),
		newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD()),
		cooinstaller.Options{Namespace: testNamespace, Persistent: true, StorageSize: "lots"},
		testTimeout,
		&bytes.Buffer{},
	)

	err := installer.Install(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage size")
}

func TestInstall_OperatorNotReadyWarnsAndContinues(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	crClient := newCRClient(t)
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, crClient, cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	require.NoError(t, installer.Install(context.Background()))

	assert.Contains(t, out.String(), "observability operator not ready")
	assert.Contains(t, out.String(), "monitoringstack crd not established")
	assert.Contains(t, out.String(), "prometheus pods not running")

	stack := getStack(t, crClient)
	assert.NotNil(t, stack, "the stack is applied even while the operator lags")
}

func TestInstall_RBACDeniedOnOperatorNamespaceDegrades(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: testNamespace}},
	)
	clientset.PrependReactor(
		"create", "namespaces",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewForbidden(
				schema.GroupResource{Resource: "namespaces"},
				v1alpha1.NamespaceCOOOperator,
				errors.New("requires cluster-admin"),
			)
		},
	)
	crClient := newCRClient(t, readySubscription(), succeededCSV(), establishedStackCRD())
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, crClient, cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	require.NoError(t, installer.Install(context.Background()))
	assert.Contains(t, out.String(), "requires cluster-admin permissions")
	assert.Contains(t, out.String(), "cluster administrator")
}

func uninstallFixtures(t *testing.T) (*fake.Clientset, ctrlclient.Client) {
	t.Helper()

	clientset := fake.NewClientset(
		&networkingv1.NetworkPolicy{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.COONetworkPolicyName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "coo"},
		}},
		&networkingv1.NetworkPolicy{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.CombinedNetworkPolicyName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor"},
		}},
	)

	crClient := newCRClient(t,
		readySubscription(),
		succeededCSV(),
		&obsopsv1alpha1.MonitoringStack{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.MonitoringStackName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "coo"},
		}},
		&obsopsv1alpha1.ThanosQuerier{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.ThanosQuerierName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "coo"},
		}},
		&promopv1.ServiceMonitor{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.COOServiceMonitorName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "coo"},
		}},
		&promopv1.PrometheusRule{ObjectMeta: metav1.ObjectMeta{
			Name: v1alpha1.COOPrometheusRuleName, Namespace: testNamespace,
			Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "coo"},
		}},
	)

	return clientset, crClient
}

func TestUninstall_RemovesManagedResourcesButKeepsOperator(t *testing.T) {
	t.Parallel()

	clientset, crClient := uninstallFixtures(t)
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, crClient, cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	require.NoError(t, installer.Uninstall(context.Background()))

	stack := &obsopsv1alpha1.MonitoringStack{}
	err := crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: testNamespace, Name: v1alpha1.MonitoringStackName,
	}, stack)
	assert.True(t, apierrors.IsNotFound(err), "the monitoring stack is removed")

	serviceMonitor := &promopv1.ServiceMonitor{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: testNamespace, Name: v1alpha1.COOServiceMonitorName,
	}, serviceMonitor)
	assert.True(t, apierrors.IsNotFound(err), "the service monitor is removed")

	subscription := &olmv1alpha1.Subscription{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: v1alpha1.NamespaceCOOOperator, Name: v1alpha1.COOSubscriptionName,
	}, subscription)
	assert.NoError(t, err, "the operator stays unless --remove-operator is set")

	_, err = clientset.NetworkingV1().
		NetworkPolicies(testNamespace).
		Get(context.Background(), v1alpha1.CombinedNetworkPolicyName, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err), "no stack remains, so the shared policy goes too")

	assert.Contains(t, out.String(), "coo monitoring removed")
}

func TestUninstall_RemoveOperatorDeletesSubscriptionAndCSV(t *testing.T) {
	t.Parallel()

	clientset, crClient := uninstallFixtures(t)
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(clientset, crClient, cooinstaller.Options{
		Namespace:      testNamespace,
		RemoveOperator: true,
	}, testTimeout, &out)

	require.NoError(t, installer.Uninstall(context.Background()))

	subscription := &olmv1alpha1.Subscription{}
	err := crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: v1alpha1.NamespaceCOOOperator, Name: v1alpha1.COOSubscriptionName,
	}, subscription)
	assert.True(t, apierrors.IsNotFound(err))

	csv := &olmv1alpha1.ClusterServiceVersion{}
	err = crClient.Get(context.Background(), ctrlclient.ObjectKey{
		Namespace: v1alpha1.NamespaceCOOOperator, Name: testCSVName,
	}, csv)
	assert.True(t, apierrors.IsNotFound(err), "the resolved CSV is removed with the subscription")
}

func TestUninstall_KeepsSharedPolicyWhileUWMRemains(t *testing.T) {
	t.Parallel()

	clientset, _ := uninstallFixtures(t)
	crClient := newCRClient(t, &promopv1.ServiceMonitor{ObjectMeta: metav1.ObjectMeta{
		Name: v1alpha1.UWMServiceMonitorName, Namespace: testNamespace,
		Labels: map[string]string{"app": "eip-monitor", "monitoring-type": "uwm"},
	}})
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, crClient, cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	require.NoError(t, installer.Uninstall(context.Background()))

	_, err := clientset.NetworkingV1().
		NetworkPolicies(testNamespace).
		Get(context.Background(), v1alpha1.CombinedNetworkPolicyName, metav1.GetOptions{})
	assert.NoError(t, err, "the shared policy survives while uwm scrapes through it")
	assert.Contains(t, out.String(), "uwm monitoring still present")
}

func TestUninstall_DeletesPVCsOnlyWhenRequested(t *testing.T) {
	t.Parallel()

	claim := &corev1.PersistentVolumeClaim{ObjectMeta: metav1.ObjectMeta{
		Name:      "prometheus-eip-monitoring-stack-db-prometheus-eip-monitoring-stack-0",
		Namespace: testNamespace,
	}}

	clientset := fake.NewClientset(claim)
	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		clientset, newCRClient(t), cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)
	require.NoError(t, installer.Uninstall(context.Background()))

	_, err := clientset.CoreV1().
		PersistentVolumeClaims(testNamespace).
		Get(context.Background(), claim.Name, metav1.GetOptions{})
	assert.NoError(t, err, "data is retained by default")

	installer = cooinstaller.NewInstaller(clientset, newCRClient(t), cooinstaller.Options{
		Namespace:               testNamespace,
		DeletePersistentStorage: true,
	}, testTimeout, &out)
	require.NoError(t, installer.Uninstall(context.Background()))

	_, err = clientset.CoreV1().
		PersistentVolumeClaims(testNamespace).
		Get(context.Background(), claim.Name, metav1.GetOptions{})
	assert.True(t, apierrors.IsNotFound(err))
}

func TestUninstall_EmptyClusterIsClean(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	installer := cooinstaller.NewInstaller(
		fake.NewClientset(), newCRClient(t), cooinstaller.Options{Namespace: testNamespace}, testTimeout, &out,
	)

	assert.NoError(t, installer.Uninstall(context.Background()))
}
