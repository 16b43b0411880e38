package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/tablesync/internal/app"
)

// NewViewCommand creates the interactive view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	var theme, prefsPath string

	cmd := &cobra.Command{
		Use:          "view",
		Short:        "Browse the table interactively",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath: rootOpts.ConfigPath,
				Verbose:    rootOpts.Verbose,
				ThemeName:  theme,
				PrefsPath:  prefsPath,
			})
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "color theme (default: last used)")
	cmd.Flags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/tablesync/prefs.toml)")

	return cmd
}
