package cmd

import (
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/detector"
	"github.com/eip-monitor/eipmon/pkg/svc/installer"
	"github.com/eip-monitor/eipmon/pkg/svc/reconciler"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewMonitoringCmd wires the monitoring command using the shared runtime
// container.
func NewMonitoringCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitoring",
		Short: "Reconcile the monitoring stack",
		Long: "Detect the installed monitoring backend and reconcile it with the requested one, " +
			"installing, switching or removing Prometheus stacks as needed.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddMonitoringFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, di.WithClients(handleMonitoringRunE))

	return cmd
}

func handleMonitoringRunE(
	cmd *cobra.Command,
	_ di.Injector,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	return runMonitoring(cmd, clientset, crClient, cfg)
}

// runMonitoring executes the monitoring stage. Shared with the all command.
func runMonitoring(
	cmd *cobra.Command,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	cfg config.Config,
) error {
	out := cmd.OutOrStdout()
	notify.Titlef(out, "📡", "Reconcile monitoring...")

	obs, err := detector.NewDetector(clientset, crClient).Detect(cmd.Context(), cfg.Namespace)
	if err != nil {
		return err
	}

	factory := installer.NewFactory(clientset, crClient, cfg, installer.DefaultInstallTimeout, out)

	_, err = reconciler.NewReconciler(factory, out).Reconcile(cmd.Context(), obs, cfg.DesiredState())

	return err
}
