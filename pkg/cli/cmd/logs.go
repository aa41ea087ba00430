package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/workload"
)

const (
	flagFollow = "follow"
	flagTail   = "tail"
)

// NewLogsCmd wires the logs command using the shared runtime container.
func NewLogsCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "logs",
		Short:        "Stream EIP Monitor pod logs",
		Long:         "Stream logs from the workload pods. With --follow only the newest pod is tailed.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP(flagFollow, "f", false, "Keep the stream open as new lines arrive")
	cmd.Flags().Int64(flagTail, 0, "Limit output to the last N lines per pod (0 streams the full log)")

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleLogsRunE)

	return cmd
}

func handleLogsRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	clientset, err := di.ResolveClientset(injector)
	if err != nil {
		return err
	}

	return workloadManager(clientset, cfg, cmd.OutOrStdout()).Logs(cmd.Context(), logOptions(cmd))
}

// logOptions reads the flag values. The flags are registered above, so the
// lookups cannot fail.
func logOptions(cmd *cobra.Command) workload.LogOptions {
	follow, _ := cmd.Flags().GetBool(flagFollow)
	tail, _ := cmd.Flags().GetInt64(flagTail)

	return workload.LogOptions{Follow: follow, Tail: tail}
}
