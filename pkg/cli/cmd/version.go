package cmd

import (
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command. It prints the same string the
// --version flag does.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "version",
		Short:        "Print version information",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(cmd.Root().Version)

			return nil
		},
	}
}
