package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/client/docker"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/image"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewBuildCmd wires the build command using the shared runtime container.
func NewBuildCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "build",
		Short:        "Build the EIP Monitor container image",
		Long:         "Build the EIP Monitor container image, skipping the build when the source tree and Dockerfile are unchanged.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddImageFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleBuildRunE)

	return cmd
}

func handleBuildRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return runBuild(cmd, injector, cfg)
}

// runBuild executes the build stage. Shared with the all command.
func runBuild(cmd *cobra.Command, injector di.Injector, cfg config.Config) error {
	out := cmd.OutOrStdout()
	notify.Titlef(out, "🔨", "Build image...")

	builder, err := imageBuilder(cmd, injector)
	if err != nil {
		return err
	}

	_, err = builder.Build(cmd.Context(), image.Options{
		ImageRef: cfg.ImageRef(),
		Tag:      cfg.Tag,
		Verbose:  cfg.Verbose,
	})

	return err
}

// imageBuilder assembles the builder after verifying the Docker daemon
// answers. Build and push are the only commands that need the daemon, so the
// check lives here rather than in the provider.
func imageBuilder(cmd *cobra.Command, injector di.Injector) (*image.Builder, error) {
	engine, err := di.ResolveDockerEngine(injector)
	if err != nil {
		return nil, err
	}

	err = docker.CheckDaemon(cmd.Context(), engine)
	if err != nil {
		return nil, err
	}

	fsys, err := di.ResolveFilesystem(injector)
	if err != nil {
		return nil, err
	}

	workdir, err := workingDirectory()
	if err != nil {
		return nil, err
	}

	return image.NewBuilder(engine, fsys, workdir, cmd.OutOrStdout()), nil
}
