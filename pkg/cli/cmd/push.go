package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/image"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewPushCmd wires the push command using the shared runtime container.
func NewPushCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "push",
		Short:        "Push the EIP Monitor image to the registry",
		Long:         "Push the EIP Monitor container image to the registry, building it first when needed.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddImageFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handlePushRunE)

	return cmd
}

func handlePushRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return runPush(cmd, injector, cfg)
}

// runPush executes the push stage. Shared with the all command.
func runPush(cmd *cobra.Command, injector di.Injector, cfg config.Config) error {
	out := cmd.OutOrStdout()
	notify.Titlef(out, "📤", "Push image...")

	builder, err := imageBuilder(cmd, injector)
	if err != nil {
		return err
	}

	return builder.Push(cmd.Context(), image.Options{
		ImageRef: cfg.ImageRef(),
		Tag:      cfg.Tag,
		Verbose:  cfg.Verbose,
	})
}
