package di

import (
	"fmt"
	"os"

	dockerclient "github.com/docker/docker/client"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/client/docker"
	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/k8s"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root
// command and tests. Providers are lazy: nothing below touches the cluster,
// the Docker daemon or the filesystem until a handler resolves it, so a
// missing kubeconfig only fails the commands that need one.
func NewRuntime() *Runtime {
	return New(
		provideRESTConfig,
		provideClientset,
		provideCRClient,
		provideFilesystem,
		provideDockerEngine,
		provideGitClient,
	)
}

// provideRESTConfig registers the cluster connection settings, loaded from
// the kubeconfig or the in-cluster service account.
func provideRESTConfig(injector Injector) error {
	do.Provide(injector, func(Injector) (*rest.Config, error) {
		return k8s.GetRESTConfig()
	})

	return nil
}

// provideClientset registers the typed client core resources go through.
func provideClientset(injector Injector) error {
	do.Provide(injector, func(i Injector) (kubernetes.Interface, error) {
		restConfig, err := do.Invoke[*rest.Config](i)
		if err != nil {
			return nil, err
		}

		return k8s.NewClientset(restConfig)
	})

	return nil
}

// provideCRClient registers the client custom resources go through.
func provideCRClient(injector Injector) error {
	do.Provide(injector, func(i Injector) (ctrlclient.Client, error) {
		restConfig, err := do.Invoke[*rest.Config](i)
		if err != nil {
			return nil, err
		}

		return k8s.NewCRClient(restConfig)
	})

	return nil
}

// provideFilesystem registers the filesystem build, release and dashboard
// commands work on.
func provideFilesystem(injector Injector) error {
	do.Provide(injector, func(Injector) (afero.Fs, error) {
		return afero.NewOsFs(), nil
	})

	return nil
}

// provideDockerEngine registers the Docker Engine API client image builds
// go through.
func provideDockerEngine(injector Injector) error {
	do.Provide(injector, func(Injector) (dockerclient.APIClient, error) {
		return docker.GetDockerClient()
	})

	return nil
}

// provideGitClient registers a git client rooted at the working directory.
func provideGitClient(injector Injector) error {
	do.Provide(injector, func(Injector) (git.Interface, error) {
		workdir, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}

		return git.NewClient(workdir), nil
	})

	return nil
}
