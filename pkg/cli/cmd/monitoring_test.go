package cmd_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	promopv1 "github.com/eip-monitor/eipmon/pkg/apis/promop/v1"
	"github.com/eip-monitor/eipmon/pkg/cli/cmd"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/k8s"
)

func newCRClient(objects ...ctrlclient.Object) ctrlclient.Client {
	return ctrlfake.NewClientBuilder().
		WithScheme(k8s.NewScheme()).
		WithObjects(objects...).
		Build()
}

func namespacedServiceMonitor(name string) *promopv1.ServiceMonitor {
	return &promopv1.ServiceMonitor{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: config.DefaultNamespace,
		},
	}
}

func serviceMonitorExists(t *testing.T, crClient ctrlclient.Client, name string) bool {
	t.Helper()

	err := crClient.Get(
		context.Background(),
		ctrlclient.ObjectKey{Namespace: config.DefaultNamespace, Name: name},
		&promopv1.ServiceMonitor{},
	)
	if apierrors.IsNotFound(err) {
		return false
	}

	require.NoError(t, err)

	return true
}

func TestMonitoringCommandWarnsWhenNothingToRemove(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	monitoringCmd := cmd.NewMonitoringCmd(newTestRuntime(
		withClientset(fake.NewClientset()),
		withCRClient(newCRClient()),
	))
	monitoringCmd.SetOut(&out)
	monitoringCmd.SetErr(&out)
	monitoringCmd.SetArgs([]string{"--remove-monitoring"})

	require.NoError(t, monitoringCmd.Execute())

	assert.Contains(t, out.String(), "no monitoring detected, nothing to remove")
}

func TestMonitoringCommandRefusesAmbiguousRemoval(t *testing.T) {
	t.Parallel()

	crClient := newCRClient(
		namespacedServiceMonitor(v1alpha1.COOServiceMonitorName),
		namespacedServiceMonitor(v1alpha1.UWMServiceMonitorName),
	)

	var out bytes.Buffer

	monitoringCmd := cmd.NewMonitoringCmd(newTestRuntime(
		withClientset(fake.NewClientset()),
		withCRClient(crClient),
	))
	monitoringCmd.SetOut(&out)
	monitoringCmd.SetErr(&out)
	monitoringCmd.SetArgs([]string{"--remove-monitoring"})

	err := monitoringCmd.Execute()
	require.Error(t, err)
	require.ErrorIs(t, err, v1alpha1.ErrAmbiguousPrimary)

	assert.True(t, serviceMonitorExists(t, crClient, v1alpha1.COOServiceMonitorName),
		"an ambiguous removal must not touch either stack")
	assert.True(t, serviceMonitorExists(t, crClient, v1alpha1.UWMServiceMonitorName),
		"an ambiguous removal must not touch either stack")
}

func TestMonitoringCommandRemovesDetectedStack(t *testing.T) {
	t.Parallel()

	crClient := newCRClient(namespacedServiceMonitor(v1alpha1.COOServiceMonitorName))

	var out bytes.Buffer

	monitoringCmd := cmd.NewMonitoringCmd(newTestRuntime(
		withClientset(fake.NewClientset()),
		withCRClient(crClient),
	))
	monitoringCmd.SetOut(&out)
	monitoringCmd.SetErr(&out)
	monitoringCmd.SetArgs([]string{"--remove-monitoring"})

	require.NoError(t, monitoringCmd.Execute())

	assert.Contains(t, out.String(), "removing detected coo monitoring")
	assert.Contains(t, out.String(), "coo monitoring removed from namespace 'eip-monitor'")
	assert.False(t, serviceMonitorExists(t, crClient, v1alpha1.COOServiceMonitorName))
}

func TestMonitoringCommandRemovesOnlyTheRequestedStack(t *testing.T) {
	t.Parallel()

	crClient := newCRClient(
		namespacedServiceMonitor(v1alpha1.COOServiceMonitorName),
		namespacedServiceMonitor(v1alpha1.UWMServiceMonitorName),
	)

	var out bytes.Buffer

	monitoringCmd := cmd.NewMonitoringCmd(newTestRuntime(
		withClientset(fake.NewClientset()),
		withCRClient(crClient),
	))
	monitoringCmd.SetOut(&out)
	monitoringCmd.SetErr(&out)
	monitoringCmd.SetArgs([]string{"--remove-monitoring", "--monitoring-type", "uwm"})

	require.NoError(t, monitoringCmd.Execute())

	assert.Contains(t, out.String(), "removing uwm monitoring, leaving coo untouched")
	assert.Contains(t, out.String(), "uwm monitoring removed from namespace 'eip-monitor'")
	assert.False(t, serviceMonitorExists(t, crClient, v1alpha1.UWMServiceMonitorName))
	assert.True(t, serviceMonitorExists(t, crClient, v1alpha1.COOServiceMonitorName),
		"the coo stack was not asked for and must stay")
}
