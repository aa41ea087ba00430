package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/exporter"
)

// NewServeCmd wires the serve command using the shared runtime container.
func NewServeCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the EIP Monitor metrics exporter",
		Long: "Run the metrics exporter in the foreground: collect EgressIP posture from the " +
			"cluster on an interval and serve /metrics and /health until interrupted. " +
			"Configured through PORT, SCRAPE_INTERVAL and LOG_LEVEL.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleServeRunE)

	return cmd
}

// handleServeRunE runs the exporter until SIGINT or SIGTERM. Settings are
// read before the clients so a bad PORT fails without touching the cluster.
// Inside a pod the clients come from the in-cluster service account; locally
// from the kubeconfig.
func handleServeRunE(cmd *cobra.Command, injector di.Injector) error {
	settings, err := exporter.SettingsFromEnv()
	if err != nil {
		return err
	}

	clientset, err := di.ResolveClientset(injector)
	if err != nil {
		return err
	}

	crClient, err := di.ResolveCRClient(injector)
	if err != nil {
		return err
	}

	logger := exporter.NewLogger(settings.LogLevel)
	collector := exporter.NewCollector(clientset, crClient)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return exporter.NewServer(collector, settings, logger).Run(ctx)
}
