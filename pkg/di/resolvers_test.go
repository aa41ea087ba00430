package di_test

import (
	"testing"

	dockerclient "github.com/docker/docker/client"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"
	ctrlfake "sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/k8s"
)

func provideFakeClientset(injector di.Injector) {
	do.Provide(injector, func(di.Injector) (kubernetes.Interface, error) {
		return fake.NewClientset(), nil
	})
}

func provideFakeCRClient(injector di.Injector) {
	do.Provide(injector, func(di.Injector) (ctrlclient.Client, error) {
		return ctrlfake.NewClientBuilder().WithScheme(k8s.NewScheme()).Build(), nil
	})
}

func TestResolveClientset(t *testing.T) {
	t.Parallel()

	injector := do.New()
	provideFakeClientset(injector)

	clientset, err := di.ResolveClientset(injector)

	require.NoError(t, err)
	require.NotNil(t, clientset)
}

func TestResolveClientset_NotRegistered(t *testing.T) {
	t.Parallel()

	clientset, err := di.ResolveClientset(do.New())

	require.Error(t, err)
	assert.Nil(t, clientset)
	assert.Contains(t, err.Error(), "resolve kubernetes client dependency")
}

func TestResolveCRClient(t *testing.T) {
	t.Parallel()

	injector := do.New()
	provideFakeCRClient(injector)

	crClient, err := di.ResolveCRClient(injector)

	require.NoError(t, err)
	require.NotNil(t, crClient)
}

func TestResolveCRClient_NotRegistered(t *testing.T) {
	t.Parallel()

	crClient, err := di.ResolveCRClient(do.New())

	require.Error(t, err)
	assert.Nil(t, crClient)
	assert.Contains(t, err.Error(), "resolve custom resource client dependency")
}

func TestResolveFilesystem(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(di.Injector) (afero.Fs, error) {
		return afero.NewMemMapFs(), nil
	})

	fsys, err := di.ResolveFilesystem(injector)

	require.NoError(t, err)
	require.NotNil(t, fsys)
}

func TestResolveFilesystem_NotRegistered(t *testing.T) {
	t.Parallel()

	fsys, err := di.ResolveFilesystem(do.New())

	require.Error(t, err)
	assert.Nil(t, fsys)
	assert.Contains(t, err.Error(), "resolve filesystem dependency")
}

func TestResolveDockerEngine(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(di.Injector) (dockerclient.APIClient, error) {
		return &dockerclient.Client{}, nil
	})

	engine, err := di.ResolveDockerEngine(injector)

	require.NoError(t, err)
	require.NotNil(t, engine)
}

func TestResolveDockerEngine_NotRegistered(t *testing.T) {
	t.Parallel()

	engine, err := di.ResolveDockerEngine(do.New())

	require.Error(t, err)
	assert.Nil(t, engine)
	assert.Contains(t, err.Error(), "resolve docker engine dependency")
}

func TestResolveGitClient(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(di.Injector) (git.Interface, error) {
		return git.NewMockClient(), nil
	})

	gitClient, err := di.ResolveGitClient(injector)

	require.NoError(t, err)
	require.NotNil(t, gitClient)
}

func TestResolveGitClient_NotRegistered(t *testing.T) {
	t.Parallel()

	gitClient, err := di.ResolveGitClient(do.New())

	require.Error(t, err)
	assert.Nil(t, gitClient)
	assert.Contains(t, err.Error(), "resolve git client dependency")
}

func TestWithClients_ResolvesBothClients(t *testing.T) {
	t.Parallel()

	injector := do.New()
	provideFakeClientset(injector)
	provideFakeCRClient(injector)

	var (
		gotClientset kubernetes.Interface
		gotCRClient  ctrlclient.Client
	)

	handler := di.WithClients(func(
		_ *cobra.Command,
		_ di.Injector,
		clientset kubernetes.Interface,
		crClient ctrlclient.Client,
	) error {
		gotClientset = clientset
		gotCRClient = crClient

		return nil
	})

	err := handler(&cobra.Command{}, injector)

	require.NoError(t, err)
	assert.NotNil(t, gotClientset)
	assert.NotNil(t, gotCRClient)
}

func TestWithClients_FailsWithoutCluster(t *testing.T) {
	t.Parallel()

	handler := di.WithClients(func(
		*cobra.Command, di.Injector, kubernetes.Interface, ctrlclient.Client,
	) error {
		t.Fatal("handler must not run without clients")

		return nil
	})

	err := handler(&cobra.Command{}, do.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve kubernetes client dependency")
}
