package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/forge/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// options are the flags shared by every command.
type options struct {
	config   string
	category string
	cached   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "forge",
		Short: "Terminal client for the Idea Forge notes backend",
		Long: `forge captures free-text notes, sends them to the Idea Forge backend for
processing and browses the structured results in a full-screen terminal UI.

Every action in the UI is also available as a subcommand for scripting.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.config, "config", "", "path to config file")
	root.Flags().StringVar(&opts.category, "category", "", "start with this category filter")
	root.Flags().BoolVar(&opts.cached, "cached", false, "show cached notes until the first load settles")

	root.AddCommand(
		newVersionCmd(),
		newAddCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newCategoriesCmd(opts),
		newHealthCmd(opts),
		newExportCmd(opts),
		newCacheCmd(opts),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	var check bool
	var releaseURL string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "forge %s (commit: %s, built: %s)\n", version, commit, date)
			if !check {
				return nil
			}
			res, err := update.Checker{URL: releaseURL}.Check(cmd.Context(), version)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if res == nil {
				fmt.Fprintln(out, "Up to date.")
			} else {
				fmt.Fprintf(out, "forge %s is available.\n", res.LatestVersion)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check for a newer release")
	cmd.Flags().StringVar(&releaseURL, "release-url", update.DefaultReleaseURL, "release feed to check")
	cmd.Flags().MarkHidden("release-url")
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
