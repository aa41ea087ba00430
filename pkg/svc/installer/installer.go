package installer

import "context"

// Installer defines methods for installing and uninstalling a monitoring backend.
type Installer interface {
	// Install installs the backend, or idempotently re-applies it when it is
	// already present.
	Install(ctx context.Context) error

	// Uninstall tears the backend down.
	Uninstall(ctx context.Context) error

	// Name returns the backend name for operator-facing output.
	Name() string
}
