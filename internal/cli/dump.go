package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/tablesync/internal/app"
)

// NewDumpCommand creates the dump command, which prints a single page and
// exits.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := app.DumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print one page of the table",
		Long: `Load the configured table, apply the requested page, sort and search,
and print the resulting page. Remote tables wait for the response or the
timeout, whichever comes first.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDir(opts.SortDir); err != nil {
				return err
			}
			if opts.Page < 0 || opts.PageSize < 0 {
				return fmt.Errorf("page and page size must not be negative")
			}
			opts.ConfigPath = rootOpts.ConfigPath
			opts.Verbose = rootOpts.Verbose
			return app.Dump(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "page number, 1-based (default: configured)")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "rows per page (default: configured)")
	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "search term")
	cmd.Flags().StringVar(&opts.SortBy, "sort", "", "column key to sort by")
	cmd.Flags().StringVar(&opts.SortDir, "dir", "asc", "sort direction (asc|desc)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "how long to wait for remote data")

	return cmd
}

func validateDir(dir string) error {
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc", "desc":
		return nil
	}
	return fmt.Errorf("invalid direction %q: must be asc or desc", dir)
}
