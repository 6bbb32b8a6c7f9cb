package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const defaultRetention = 90 * 24 * time.Hour

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or trim the local note snapshot",
	}
	cmd.AddCommand(newCacheStatsCmd(opts), newCachePruneCmd(opts))
	return cmd
}

func newCachePruneCmd(opts *options) *cobra.Command {
	var olderThan string
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old notes from the local cache",
		Long: `Delete cached notes that were last refreshed before the cutoff and reclaim disk space.

The cutoff defaults to 90d unless overridden with --older-than.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			retention := defaultRetention
			if olderThan != "" {
				d, err := parseSince(olderThan)
				if err != nil {
					return fmt.Errorf("invalid --older-than value: %w", err)
				}
				retention = d
			}

			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			db, err := e.openCache()
			if err != nil {
				return err
			}
			defer db.Close()

			deleted, err := db.Prune(retention)
			if err != nil {
				return fmt.Errorf("pruning: %w", err)
			}

			out := cmd.OutOrStdout()
			if deleted == 0 {
				fmt.Fprintln(out, "Nothing to prune.")
			} else {
				fmt.Fprintf(out, "Pruned %d note(s) older than %s.\n", deleted, formatDuration(retention))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "", "override the cutoff (e.g., 30d, 720h)")
	return cmd
}

func newCacheStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			dbPath := e.cfg.CacheFilePath()
			db, err := e.openCache()
			if err != nil {
				return err
			}
			defer db.Close()

			s, err := db.Stats(dbPath)
			if err != nil {
				return fmt.Errorf("reading stats: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache: %s\n", dbPath)
			fmt.Fprintf(out, "Notes: %d\n", s.Notes)
			fmt.Fprintf(out, "Size: %s\n", formatBytes(s.Size))
			if s.LastSync.IsZero() {
				fmt.Fprintln(out, "Last sync: never")
			} else {
				fmt.Fprintf(out, "Last sync: %s\n", s.LastSync.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
