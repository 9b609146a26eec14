package main

import (
	"github.com/handiism/dmx/internal/config"
	"github.com/spf13/cobra"
)

var (
	configDir string
	verbose   bool
	settings  *config.Settings
)

// NewRootCmd creates the root command. Without a subcommand it starts the
// interactive client.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dmx",
		Short: "Search and download music from Deezer",
		Long: `dmx searches the Deezer catalog for tracks, albums and artists,
plays 30 second previews and downloads through deemix.

Run without arguments for the interactive client.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.Load(configDir)
			return err
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), "")
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default is ~/.config/dmx)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show verbose download output")

	rootCmd.AddCommand(NewInteractiveCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewDownloadCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewStatusCmd())

	return rootCmd
}
