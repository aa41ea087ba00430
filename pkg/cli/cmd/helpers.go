package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eip-monitor/eipmon/pkg/config"
)

// loadConfig resolves the command's configuration. Flags are bound after
// parsing, so cmd.Flags() already carries the root's persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfgManager := config.NewManager()
	cfgManager.BindFlags(cmd.Flags())

	cfg, err := cfgManager.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// workingDirectory returns the directory build contexts, version files and
// build markers live in.
func workingDirectory() (string, error) {
	workdir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}

	return workdir, nil
}
