package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matheuskafuri/forge/internal/export"
)

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		out    string
		cat    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every note to Parquet or JSON",
		Long: `Page through every note on the backend and write them to a file.

Parquet output has one row per note with links stored as JSON text.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			filter, err := parseCategory(cat)
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			if out == "-" && f == export.Parquet {
				return fmt.Errorf("parquet output needs a file, use --format json for stdout")
			}

			e, err := loadEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := e.context(cmd)
			defer cancel()
			all, err := export.FetchAll(ctx, e.client, string(filter), e.cfg.PageSize)
			if err != nil {
				return fmt.Errorf("exporting: %w", err)
			}

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), f, all)
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			if err := export.Write(file, f, all); err != nil {
				file.Close()
				return fmt.Errorf("writing %s: %w", out, err)
			}
			// WriteParquet may already have closed it.
			file.Close()

			e.log.Info().Int("notes", len(all)).Str("format", format).Str("out", out).Msg("export written")
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d note(s) to %s.\n", len(all), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.Parquet), "parquet or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	cmd.Flags().StringVar(&cat, "category", "", "only this category")
	return cmd
}
