// Package cli is the command-line surface. Running the binary with no
// arguments launches the desktop app; subcommands work against the local
// history database directly.
package cli

import "github.com/spf13/cobra"

// NewRootCmd builds the command tree. launch starts the desktop app.
func NewRootCmd(launch func() error) *cobra.Command {
	root := &cobra.Command{
		Use:           "maestro",
		Short:         "Push-to-talk dictation with mode-aware transcript transformation",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(_ *cobra.Command, _ []string) error {
			return launch()
		},
	}

	root.AddCommand(newHistoryCmd())
	return root
}
