package cmd

import (
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	ctrlclient "sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/eip-monitor/eipmon/pkg/apis/monitoring/v1alpha1"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/image"
	"github.com/eip-monitor/eipmon/pkg/svc/installer"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewCleanCmd wires the clean command using the shared runtime container.
func NewCleanCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the EIP Monitor workload",
		Long: "Delete the workload resources from the namespace. With --all the monitoring stacks " +
			"of both backends and the cached build markers are removed too.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddCleanFlags(cmd.Flags())
	config.AddMonitoringFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleCleanRunE)

	return cmd
}

func handleCleanRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "🧹", "Clean up...")

	clientset, err := di.ResolveClientset(injector)
	if err != nil {
		return err
	}

	err = workloadManager(clientset, cfg, out).Clean(cmd.Context())
	if err != nil {
		return err
	}

	if !cfg.CleanAll {
		return nil
	}

	crClient, err := di.ResolveCRClient(injector)
	if err != nil {
		return err
	}

	err = removeAllMonitoring(cmd, clientset, crClient, cfg)
	if err != nil {
		return err
	}

	return removeBuildMarkers(cmd, injector)
}

// removeAllMonitoring tears down both monitoring backends. Uninstalls are
// idempotent, so an absent stack is not an error. The PVC guard still
// applies: volumes survive unless --delete-persistent-storage was given.
func removeAllMonitoring(
	cmd *cobra.Command,
	clientset kubernetes.Interface,
	crClient ctrlclient.Client,
	cfg config.Config,
) error {
	factory := installer.NewFactory(
		clientset, crClient, cfg, installer.DefaultInstallTimeout, cmd.OutOrStdout(),
	)

	for _, monitoringType := range []v1alpha1.MonitoringType{v1alpha1.TypeCOO, v1alpha1.TypeUWM} {
		inst, err := factory.ForType(monitoringType)
		if err != nil {
			return err
		}

		err = inst.Uninstall(cmd.Context())
		if err != nil {
			return err
		}
	}

	return nil
}

func removeBuildMarkers(cmd *cobra.Command, injector di.Injector) error {
	fsys, err := di.ResolveFilesystem(injector)
	if err != nil {
		return err
	}

	workdir, err := workingDirectory()
	if err != nil {
		return err
	}

	removed, err := image.RemoveMarkers(fsys, workdir)
	if err != nil {
		return err
	}

	if removed > 0 {
		notify.Activityf(cmd.OutOrStdout(), "cleared cached build markers")
	}

	return nil
}
