package cmd

import (
	"io"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/workload"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewDeployCmd wires the deploy command using the shared runtime container.
func NewDeployCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "deploy",
		Short:        "Deploy the EIP Monitor workload",
		Long:         "Deploy or refresh the EIP Monitor workload in the target namespace and wait for the rollout.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddImageFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleDeployRunE)

	return cmd
}

func handleDeployRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return runDeploy(cmd, injector, cfg)
}

// runDeploy executes the deploy stage. Shared with the all command.
func runDeploy(cmd *cobra.Command, injector di.Injector, cfg config.Config) error {
	out := cmd.OutOrStdout()
	notify.Titlef(out, "🚀", "Deploy workload...")

	clientset, err := di.ResolveClientset(injector)
	if err != nil {
		return err
	}

	return workloadManager(clientset, cfg, out).Deploy(cmd.Context())
}

// workloadManager assembles the workload manager from the resolved config.
func workloadManager(
	clientset kubernetes.Interface,
	cfg config.Config,
	out io.Writer,
) *workload.Manager {
	return workload.NewManager(clientset, workload.Options{
		Namespace: cfg.Namespace,
		Image:     cfg.ImageRef(),
		LogLevel:  cfg.LogLevel,
	}, workload.DefaultRolloutTimeout, out)
}
