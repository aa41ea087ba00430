package k8s_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/eip-monitor/eipmon/pkg/k8s"
)

var errPlain = errors.New("plain failure")

func TestErrKubeconfigPathEmpty_ErrorMessage(t *testing.T) {
	t.Parallel()

	require.Error(t, k8s.ErrKubeconfigPathEmpty)
	assert.Equal(t, "kubeconfig path is empty", k8s.ErrKubeconfigPathEmpty.Error())
}

func TestIsTransientAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "service unavailable",
			err:      apierrors.NewServiceUnavailable("etcd leader election"),
			expected: true,
		},
		{
			name:     "server could not find the requested resource",
			err:      errors.New("the server could not find the requested resource"),
			expected: true,
		},
		{
			name:     "no matches for kind",
			err:      errors.New("no matches for kind \"MonitoringStack\" in version \"monitoring.rhobs/v1alpha1\""),
			expected: true,
		},
		{
			name: "object not found",
			err: apierrors.NewNotFound(
				schema.GroupResource{Group: "apps", Resource: "deployments"},
				"eip-monitor",
			),
			expected: false,
		},
		{
			name:     "plain error",
			err:      errPlain,
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, k8s.IsTransientAPIError(testCase.err))
		})
	}
}

func TestIsMissingKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "no matches for kind",
			err:      errors.New("no matches for kind \"ServiceMonitor\" in version \"monitoring.coreos.com/v1\""),
			expected: true,
		},
		{
			name:     "could not find the requested resource",
			err:      errors.New("the server could not find the requested resource"),
			expected: true,
		},
		{
			name:     "plain error",
			err:      errPlain,
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, k8s.IsMissingKind(testCase.err))
		})
	}
}

func TestIsPermissionDenied(t *testing.T) {
	t.Parallel()

	forbidden := apierrors.NewForbidden(
		schema.GroupResource{Group: "", Resource: "configmaps"},
		"cluster-monitoring-config",
		errPlain,
	)

	assert.True(t, k8s.IsPermissionDenied(forbidden))
	assert.True(t, k8s.IsPermissionDenied(apierrors.NewUnauthorized("token expired")))
	assert.False(t, k8s.IsPermissionDenied(nil))
	assert.False(t, k8s.IsPermissionDenied(errPlain))
	assert.False(
		t,
		k8s.IsPermissionDenied(apierrors.NewNotFound(
			schema.GroupResource{Group: "", Resource: "configmaps"},
			"cluster-monitoring-config",
		)),
	)
}
