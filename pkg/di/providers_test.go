package di_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eip-monitor/eipmon/pkg/di"
)

func TestNewRuntime(t *testing.T) {
	t.Parallel()

	runtime := di.NewRuntime()

	require.NotNil(t, runtime)
}

// Only the providers that stay off the network are resolved here. Cluster
// and Docker providers are exercised through the command tests, which
// replace them with fakes.
func TestNewRuntime_ProvidesFilesystem(t *testing.T) {
	t.Parallel()

	runtime := di.NewRuntime()

	err := runtime.Invoke(func(injector di.Injector) error {
		fsys, resolveErr := di.ResolveFilesystem(injector)
		require.NoError(t, resolveErr)
		require.NotNil(t, fsys)

		return nil
	})

	require.NoError(t, err)
}

func TestNewRuntime_ProvidesGitClient(t *testing.T) {
	t.Parallel()

	runtime := di.NewRuntime()

	err := runtime.Invoke(func(injector di.Injector) error {
		gitClient, resolveErr := di.ResolveGitClient(injector)
		require.NoError(t, resolveErr)
		require.NotNil(t, gitClient)

		return nil
	})

	require.NoError(t, err)
}
