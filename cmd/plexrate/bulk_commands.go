package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CWuestefeld/plex-rating-utils/internal/bulk"
	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/config"
	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
)

func newBulkCommand(ctx *commandContext) *cobra.Command {
	bulkCmd := &cobra.Command{
		Use:   "bulk",
		Short: "Import and export ratings as CSV",
	}

	bulkCmd.AddCommand(newBulkExportCommand(ctx))
	bulkCmd.AddCommand(newBulkImportCommand(ctx))
	return bulkCmd
}

func newBulkExportCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var fileFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write current ratings of one level to a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := bulkFilePath(cfg, kind, fileFlag)
			if err != nil {
				return err
			}

			return ctx.withRunner(runnerOverrides{dryRun: true}, func(runCtx context.Context, r *engine.Runner) error {
				rows, err := r.ExportRatings(runCtx, kind)
				if err != nil {
					return err
				}
				if err := bulk.WriteFile(path, rows); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s ratings to %s\n", len(rows), kind, path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "track", "Level to export: artist, album, or track")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Destination CSV (defaults to the configured path)")
	return cmd
}

func newBulkImportCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var fileFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply ratings of one level from a CSV file",
		Long: `Apply rating rows from a CSV file. Rows classified manual are
written to the library and protected from the engine; rows classified
inferred drop the item's shadow record so the next run recomputes it.
Malformed rows are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := bulkFilePath(cfg, kind, fileFlag)
			if err != nil {
				return err
			}

			rows, rowErrs, err := bulk.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			return ctx.withRunner(runnerOverrides{dryRun: dryRun}, func(runCtx context.Context, r *engine.Runner) error {
				summary, err := r.ImportRatings(runCtx, kind, rows, rowErrs)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Applied %d manual ratings, reset %d to engine ownership.\n", summary.Applied, summary.Reset)
				for _, re := range summary.Rejected {
					fmt.Fprintf(out, "  skipped %v\n", re)
				}
				if dryRun {
					fmt.Fprintln(out, "Dry run: nothing was changed.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "track", "Level to import: artist, album, or track")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Source CSV (defaults to the configured path)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Validate the file without applying anything")
	return cmd
}

func parseKind(value string) (catalog.Kind, error) {
	kind := catalog.Kind(strings.ToLower(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("unknown kind %q (want artist, album, or track)", value)
	}
	return kind, nil
}

func bulkFilePath(cfg *config.Config, kind catalog.Kind, override string) (string, error) {
	path := strings.TrimSpace(override)
	if path == "" {
		switch kind {
		case catalog.KindArtist:
			path = cfg.Bulk.ArtistCSV
		case catalog.KindAlbum:
			path = cfg.Bulk.AlbumCSV
		case catalog.KindTrack:
			path = cfg.Bulk.TrackCSV
		}
	}
	if path == "" {
		return "", fmt.Errorf("no CSV path configured for %s (set bulk.%s_csv or pass --file)", kind, kind)
	}
	return config.ExpandPath(path)
}
