package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/dashboard"
)

// defaultDashboardDir is where the repository keeps its GrafanaDashboard
// manifests.
const defaultDashboardDir = "k8s/grafana"

// errDashboardFindings makes lint exit non-zero when violations exist; the
// findings themselves were already reported as warnings.
var errDashboardFindings = errors.New("dashboard manifests need fixes; run 'eipmon dashboard fix'")

// NewDashboardCmd creates the dashboard command group namespace.
func NewDashboardCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Lint and fix Grafana dashboard manifests",
		Long: "Check GrafanaDashboard manifests for current-value panels missing instant queries " +
			"and bare metric references without aggregation, or rewrite them in place.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewDashboardLintCmd(runtimeContainer))
	cmd.AddCommand(NewDashboardFixCmd(runtimeContainer))

	return cmd
}

// NewDashboardLintCmd wires the dashboard lint command.
func NewDashboardLintCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lint [dir]",
		Short:        "Report dashboard panels that need fixes",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runtimeContainer.Invoke(func(injector di.Injector) error {
			return handleDashboardLint(cmd, injector, dashboardDir(args))
		})
	}

	return cmd
}

// NewDashboardFixCmd wires the dashboard fix command.
func NewDashboardFixCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fix [dir]",
		Short:        "Rewrite dashboard manifests in place",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runtimeContainer.Invoke(func(injector di.Injector) error {
			return handleDashboardFix(cmd, injector, dashboardDir(args))
		})
	}

	return cmd
}

func dashboardDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return defaultDashboardDir
}

func handleDashboardLint(cmd *cobra.Command, injector di.Injector, dir string) error {
	fsys, err := di.ResolveFilesystem(injector)
	if err != nil {
		return err
	}

	findings, err := dashboard.Lint(fsys, dir, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if len(findings) > 0 {
		return errDashboardFindings
	}

	return nil
}

func handleDashboardFix(cmd *cobra.Command, injector di.Injector, dir string) error {
	fsys, err := di.ResolveFilesystem(injector)
	if err != nil {
		return err
	}

	_, err = dashboard.Fix(fsys, dir, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to fix dashboards in '%s': %w", dir, err)
	}

	return nil
}
