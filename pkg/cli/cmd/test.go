package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewTestCmd wires the test command using the shared runtime container.
func NewTestCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Smoke-test the deployed EIP Monitor",
		Long: "Verify the deployed workload: rollout complete, health endpoint reports healthy " +
			"and the metrics endpoint exposes exporter samples, probed through the API server proxy.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleTestRunE)

	return cmd
}

func handleTestRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "🧪", "Smoke test...")

	clientset, err := di.ResolveClientset(injector)
	if err != nil {
		return err
	}

	return workloadManager(clientset, cfg, out).Test(cmd.Context())
}
