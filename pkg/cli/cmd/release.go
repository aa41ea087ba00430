package cmd

import (
	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/client/git"
	"github.com/eip-monitor/eipmon/pkg/config"
	"github.com/eip-monitor/eipmon/pkg/di"
	"github.com/eip-monitor/eipmon/pkg/svc/release"
	"github.com/eip-monitor/eipmon/pkg/utils/notify"
)

// NewReleaseCmd wires the release command using the shared runtime container.
func NewReleaseCmd(runtimeContainer *di.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Cut a release",
		Long: "Bump the version file, commit and tag the bump, then merge the working branch " +
			"into each release branch and push. The worktree must be clean.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	config.AddReleaseFlags(cmd.Flags())

	cmd.RunE = di.RunEWithRuntime(runtimeContainer, handleReleaseRunE)

	return cmd
}

func handleReleaseRunE(cmd *cobra.Command, injector di.Injector) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	err = git.CheckAvailable()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	notify.Titlef(out, "🏷️", "Release...")

	gitClient, err := di.ResolveGitClient(injector)
	if err != nil {
		return err
	}

	fsys, err := di.ResolveFilesystem(injector)
	if err != nil {
		return err
	}

	workdir, err := workingDirectory()
	if err != nil {
		return err
	}

	releaser := release.NewReleaser(gitClient, fsys, workdir, out)

	_, err = releaser.Run(cmd.Context(), release.Options{BumpType: cfg.BumpType})

	return err
}
