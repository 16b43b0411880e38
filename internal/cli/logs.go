package cli

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/five82/tablesync/internal/app"
)

// NewLogsCommand creates the logs command.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := app.LogsOptions{}
	var color string

	cmd := &cobra.Command{
		Use:          "logs",
		Short:        "Show recent log entries",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch color {
			case "always":
				opts.Color = true
			case "never":
				opts.Color = false
			default:
				opts.Color = cmd.OutOrStdout() == os.Stdout && term.IsTerminal(os.Stdout.Fd())
			}
			opts.ConfigPath = rootOpts.ConfigPath
			return app.Logs(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 50, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&opts.Level, "level", "", "minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&color, "color", "auto", "colorize output (auto|always|never)")

	return cmd
}
