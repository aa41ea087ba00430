package cmd

import (
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
)

// NewAllCmd wires the all command using the shared runtime container.
func NewAllCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "all",
		Short:        "Build, push, deploy and reconcile monitoring in one run",
		Long:         "Run the full pipeline: build the image, push it, deploy the workload and reconcile the monitoring stack.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddImageFlags(cmd.Flags())
	config.AddMonitoringFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, di.WithClients(handleAllRunE))

	return cmd
}

// handleAllRunE runs each stage in order and stops at the first failure.
// Cluster clients are resolved before the build so a missing kubeconfig
// fails the run before any image work happens.
func handleAllRunE(
	cmd *cobra.Command,
	injector di.Injector,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	err = runBuild(cmd, injector, cfg)
	if err != nil {
		return err
	}

	cmd.Println()

	err = runPush(cmd, injector, cfg)
	if err != nil {
		return err
	}

	cmd.Println()

	err = runDeploy(cmd, injector, cfg)
	if err != nil {
		return err
	}

	cmd.Println()

	return runMonitoring(cmd, clientset, crClient, cfg)
}
