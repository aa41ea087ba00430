package k8s_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
)

func newFakeCRClient(t *testing.T, objects ...ctrlclient.Object) ctrlclient.Client {
	t.Helper()

	return ctrlfake.NewClientBuilder().
		WithScheme(k8s.NewScheme()).
		WithObjects(objects...).
		Build()
}

func serviceMonitor(name string, labels map[string]string, port string) *promopv1.ServiceMonitor {
	return &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "eip-monitor",
			Labels:    labels,
		},
		Spec: promopv1.ServiceMonitorSpec{
			Endpoints: []promopv1.Endpoint{{Port: port, Path: "/metrics"}},
		},
	}
}

func TestUpsert_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	crClient := newFakeCRClient(t)
	desired := serviceMonitor("eip-monitor-coo", map[string]string{"app": "eip-monitor"}, "metrics")

	obj := &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace},
	}

	err := k8s.Upsert(context.Background(), crClient, obj, func() error {
		obj.Labels = desired.Labels
		obj.Spec = desired.Spec

		return nil
	})
	require.NoError(t, err)

	stored := &promopv1.ServiceMonitor{}
	err = crClient.Get(
		context.Background(),
		ctrlclient.ObjectKey{Namespace: "eip-monitor", Name: "eip-monitor-coo"},
		stored,
	)
	require.NoError(t, err)
	assert.Equal(t, "metrics", stored.Spec.Endpoints[0].Port)
	assert.Equal(t, "eip-monitor", stored.Labels["app"])
}

func TestUpsert_UpdatesExisting(t *testing.T) {
	t.Parallel()

	crClient := newFakeCRClient(
		t,
		serviceMonitor("eip-monitor-coo", map[string]string{"app": "eip-monitor"}, "old-port"),
	)

	obj := &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: "eip-monitor-coo", Namespace: "eip-monitor"},
	}

	err := k8s.Upsert(context.Background(), crClient, obj, func() error {
		obj.Spec.Endpoints = []promopv1.Endpoint{{Port: "metrics", Path: "/metrics"}}

		return nil
	})
	require.NoError(t, err)

	stored := &promopv1.ServiceMonitor{}
	err = crClient.Get(
		context.Background(),
		ctrlclient.ObjectKey{Namespace: "eip-monitor", Name: "eip-monitor-coo"},
		stored,
	)
	require.NoError(t, err)
	assert.Equal(t, "metrics", stored.Spec.Endpoints[0].Port)
}

func TestDelete_RemovesExisting(t *testing.T) {
	t.Parallel()

	crClient := newFakeCRClient(
		t,
		serviceMonitor("eip-monitor-uwm", map[string]string{"app": "eip-monitor"}, "metrics"),
	)

	err := k8s.Delete(context.Background(), crClient, &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: "eip-monitor-uwm", Namespace: "eip-monitor"},
	})
	require.NoError(t, err)

	stored := &promopv1.ServiceMonitor{}
	err = crClient.Get(
		context.Background(),
		ctrlclient.ObjectKey{Namespace: "eip-monitor", Name: "eip-monitor-uwm"},
		stored,
	)
	require.Error(t, err)
}

func TestDelete_MissingObjectIsNoError(t *testing.T) {
	t.Parallel()

	crClient := newFakeCRClient(t)

	err := k8s.Delete(context.Background(), crClient, &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{Name: "never-created", Namespace: "eip-monitor"},
	})
	require.NoError(t, err)
}

func TestDeleteAllByLabels_DeletesOnlyMatches(t *testing.T) {
	t.Parallel()

	crClient := newFakeCRClient(
		t,
		serviceMonitor("eip-monitor-coo", map[string]string{"app": "eip-monitor"}, "metrics"),
		serviceMonitor("eip-monitor-uwm", map[string]string{"app": "eip-monitor"}, "metrics"),
		serviceMonitor("unrelated", map[string]string{"app": "other"}, "metrics"),
	)

	err := k8s.DeleteAllByLabels(
		context.Background(),
		crClient,
		&promopv1.ServiceMonitor{},
		"eip-monitor",
		map[string]string{"app": "eip-monitor"},
	)
	require.NoError(t, err)

	remaining := &promopv1.ServiceMonitorList{}
	err = crClient.List(context.Background(), remaining, ctrlclient.InNamespace("eip-monitor"))
	require.NoError(t, err)
	require.Len(t, remaining.Items, 1)
	assert.Equal(t, "unrelated", remaining.Items[0].Name)
}
