package exporter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	cloudnetworkv1 "github.com/eip-monitor/eipmon/pkg/apis/cloudnetwork/v1"
	ovnv1 "github.com/eip-monitor/eipmon/pkg/apis/ovn/v1"
	"github.com/eip-monitor/eipmon/pkg/k8s"
	"github.com/eip-monitor/eipmon/pkg/svc/exporter"
)

func egressNode(name string, assignable bool) *corev1.Node {
	node := &corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: name}}
	if assignable {
		node.Labels = map[string]string{ovnv1.EgressAssignableLabel: "true"}
	}

	return node
}

func TestCollectorSnapshot_NilClients(t *testing.T) {
	t.Parallel()

	collector := exporter.NewCollector(nil, nil)

	_, err := collector.Snapshot(context.Background())

	assert.ErrorIs(t, err, exporter.ErrNoClients)
}

func TestCollectorSnapshot_CollectsAllSources(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset(
		egressNode("node-b", true),
		egressNode("node-a", true),
		egressNode("worker-plain", false),
	)

	prodEgressIP := placedEgressIP("prod", "node-a")
	stagingEgressIP := placedEgressIP("staging")
	pendingCloudIP := cloudIP("10.0.128.10", cloudnetworkv1.ReasonPending, snapshotTime)

	crClient := ctrlfake.NewClientBuilder().
		WithScheme(k8s.NewScheme()).
		WithObjects(&prodEgressIP, &stagingEgressIP, &pendingCloudIP).
		Build()

	collector := exporter.NewCollector(clientset, crClient)

	snapshot, err := collector.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Len(t, snapshot.EgressIPs, 2)
	assert.Len(t, snapshot.CloudIPs, 1)
	assert.Equal(t, []string{"node-a", "node-b"}, snapshot.Nodes, "unlabeled nodes stay out, names come back sorted")
	assert.WithinDuration(t, time.Now(), snapshot.Taken, 5*time.Second)
}

func TestCollectorSnapshot_EgressIPListFailure(t *testing.T) {
	t.Parallel()

	crClient := ctrlfake.NewClientBuilder().
		WithScheme(k8s.NewScheme()).
		WithInterceptorFuncs(interceptor.Funcs{
			List: func(
				ctx context.Context,
				client ctrlclient.WithWatch,
				list ctrlclient.ObjectList,
				opts ...ctrlclient.ListOption,
			) error {
				if _, isEgressList := list.(*ovnv1.EgressIPList); isEgressList {
					return apierrors.NewForbidden(
						schema.GroupResource{Group: "k8s.ovn.org", Resource: "egressips"},
						"",
						assert.AnError,
					)
				}

				return client.List(ctx, list, opts...)
			},
		}).
		Build()

	collector := exporter.NewCollector(fake.NewClientset(), crClient)

	_, err := collector.Snapshot(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list egress IPs")
}

func TestCollectorSnapshot_NodeListFailure(t *testing.T) {
	t.Parallel()

	clientset := fake.NewClientset()
	clientset.PrependReactor(
		"list",
		"nodes",
		func(_ k8stesting.Action) (bool, runtime.Object, error) {
			return true, nil, apierrors.NewForbidden(
				schema.GroupResource{Resource: "nodes"},
				"",
				assert.AnError,
			)
		},
	)

	crClient := ctrlfake.NewClientBuilder().WithScheme(k8s.NewScheme()).Build()
	collector := exporter.NewCollector(clientset, crClient)

	_, err := collector.Snapshot(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list egress-assignable nodes")
}
