package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the tablesync command tree. Running the root
// without a subcommand opens the interactive view.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	viewCmd := NewViewCommand(opts)
	cmd := &cobra.Command{
		Use:   "tablesync",
		Short: "Paginate, sort, search and select tabular data",
		Long: `tablesync keeps a table view (page, page size, sort, search and
selection) in sync with its data, either in memory from a rows file or
against a remote HTTP endpoint that pages on the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          viewCmd.RunE,
	}
	cmd.Flags().AddFlagSet(viewCmd.Flags())

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ~/.config/tablesync/config.toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug messages")

	cmd.AddCommand(viewCmd)
	cmd.AddCommand(NewDumpCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))

	return cmd
}
