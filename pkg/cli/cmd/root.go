package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/cli/errorhandler"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
)

// NewRootCmd creates the root command with version info and all subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := di.NewRuntime()

	cmd := &cobra.Command{
		Use:   "eipmon",
		Short: "Manage the EIP Monitor workload and its monitoring stack on OpenShift",
		Long: "eipmon builds, deploys and smoke-tests the EIP Monitor exporter, and keeps its " +
			"Prometheus monitoring stack (Cluster Observability Operator or User Workload " +
			"Monitoring) reconciled with the requested state.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	config.AddGlobalFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewBuildCmd(runtimeContainer))
	cmd.AddCommand(NewPushCmd(runtimeContainer))
	cmd.AddCommand(NewDeployCmd(runtimeContainer))
	cmd.AddCommand(NewMonitoringCmd(runtimeContainer))
	cmd.AddCommand(NewAllCmd(runtimeContainer))
	cmd.AddCommand(NewTestCmd(runtimeContainer))
	cmd.AddCommand(NewLogsCmd(runtimeContainer))
	cmd.AddCommand(NewCleanCmd(runtimeContainer))
	cmd.AddCommand(NewServeCmd(runtimeContainer))
	cmd.AddCommand(NewDashboardCmd(runtimeContainer))
	cmd.AddCommand(NewReleaseCmd(runtimeContainer))
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE shows help when eipmon is invoked without a subcommand.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	err := cmd.Help()
	if err != nil {
		return fmt.Errorf("displaying help: %w", err)
	}

	return nil
}
