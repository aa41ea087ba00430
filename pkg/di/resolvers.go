package di

import (
	"fmt"

	dockerclient "github.com/docker/docker/client"
	"github.com/samber/do/v2"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/client/git"
)

// Dependency resolvers.

// ResolveClientset retrieves the core Kubernetes client from the injector
// with consistent error handling.
func ResolveClientset(injector Injector) (kubernetes.Interface, error) {
	clientset, err := do.Invoke[kubernetes.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve kubernetes client dependency: %w", err)
	}

	return clientset, nil
}

// ResolveCRClient retrieves the custom resource client from the injector
// with consistent error handling.
func ResolveCRClient(injector Injector) (ctrlclient.Client, error) {
	crClient, err := do.Invoke[ctrlclient.Client](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve custom resource client dependency: %w", err)
	}

	return crClient, nil
}

// ResolveFilesystem retrieves the filesystem dependency from the injector
// with consistent error handling.
func ResolveFilesystem(injector Injector) (afero.Fs, error) {
	fsys, err := do.Invoke[afero.Fs](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve filesystem dependency: %w", err)
	}

	return fsys, nil
}

// ResolveDockerEngine retrieves the Docker Engine API client from the
// injector with consistent error handling.
func ResolveDockerEngine(injector Injector) (dockerclient.APIClient, error) {
	engine, err := do.Invoke[dockerclient.APIClient](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve docker engine dependency: %w", err)
	}

	return engine, nil
}

// ResolveGitClient retrieves the git client from the injector with
// consistent error handling.
func ResolveGitClient(injector Injector) (git.Interface, error) {
	gitClient, err := do.Invoke[git.Interface](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve git client dependency: %w", err)
	}

	return gitClient, nil
}

// Handler decorators.

// WithClients decorates a handler to resolve both Kubernetes clients up
// front. Cluster commands fail here, before any work is attempted, when
// neither a kubeconfig nor in-cluster credentials are available.
func WithClients(
	handler func(
		cmd *cobra.Command,
		injector Injector,
		clientset kubernetes.Interface,
		crClient ctrlclient.Client,
	) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		clientset, err := ResolveClientset(injector)
		if err != nil {
			return err
		}

		crClient, err := ResolveCRClient(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, clientset, crClient)
	}
}
