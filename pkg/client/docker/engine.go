// Package docker constructs Docker Engine API clients.
package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/client"
)

// ErrDaemonUnreachable is returned when the Docker daemon does not answer a ping.
var ErrDaemonUnreachable = errors.New("docker daemon unreachable")

// GetDockerClient creates a Docker client using environment configuration.
func GetDockerClient() (client.APIClient, error) {
	dockerClient, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return dockerClient, nil
}

// CheckDaemon verifies the daemon answers a ping. Build and push commands
// call it up front so a stopped daemon fails with a clear message instead
// of mid-build.
func CheckDaemon(ctx context.Context, apiClient client.APIClient) error {
	_, err := apiClient.Ping(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDaemonUnreachable, err)
	}

	return nil
}
