package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the shadow state against the live library",
		Long: `Compare every recorded engine rating against the live library
without writing anything. Reports ratings a human has since changed
and records whose items no longer exist.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(runnerOverrides{dryRun: true}, func(runCtx context.Context, r *engine.Runner) error {
				report, err := r.Verify(runCtx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintf(out, "Checked %d engine-authored ratings.\n", report.Checked)

				if len(report.Overrides) == 0 && len(report.Orphans) == 0 {
					fmt.Fprintln(out, renderStatusLine("State", statusOK, "consistent with the library", colorize))
					return nil
				}

				if len(report.Overrides) > 0 {
					rows := make([][]cell, 0, len(report.Overrides))
					for _, e := range report.Overrides {
						rows = append(rows, []cell{
							textCell(e.ItemID),
							textCell(e.Title),
							starsCell(e.Expected),
							starsCell(e.Found),
						})
					}
					fmt.Fprintln(out, renderStatusLine("Overrides", statusWarn,
						fmt.Sprintf("%d ratings changed by hand; the next run records them as manual", len(report.Overrides)), colorize))
					fmt.Fprintln(out, renderTable(
						[]string{"Item", "Title", "Engine", "Live"},
						rows,
					))
				}

				if len(report.Orphans) > 0 {
					fmt.Fprintln(out, renderStatusLine("Orphans", statusWarn,
						fmt.Sprintf("%d records reference items no longer in the library", len(report.Orphans)), colorize))
					for _, id := range report.Orphans {
						fmt.Fprintf(out, "  %s\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Retract every rating the engine has written",
		Long: `Remove all engine-authored ratings and marker tags from the
library and drop the shadow records behind them. Ratings a human has
changed since the engine wrote them are left in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(runnerOverrides{dryRun: dryRun}, func(runCtx context.Context, r *engine.Runner) error {
				summary, err := r.Cleanup(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Removed %d engine ratings, preserved %d human-changed, swept %d stray markers, dropped %d orphan records.\n",
					summary.Removed, summary.Preserved, summary.Swept, summary.Orphans)
				if dryRun {
					fmt.Fprintln(out, "Dry run: nothing was changed.")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be removed without changing anything")
	return cmd
}

func newReconstructCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: "Rebuild lost shadow records from marker tags",
		Long: `Scan the library for items carrying the engine's marker tag but
missing from the shadow state, and re-register each at its current
rating. Use after losing or moving the state database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(runnerOverrides{dryRun: dryRun}, func(runCtx context.Context, r *engine.Runner) error {
				restored, err := r.Reconstruct(runCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reconstructed %d shadow records.\n", restored)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would be restored without writing")
	return cmd
}

func newRemapCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remap",
		Short: "Collapse half-star ratings onto whole stars",
		Long: `Rewrite every rated item through the half-star-to-whole-star
mapping (3.5 promotes to 4, 4.5 to 5). Fractional engine posteriors
are left alone; shadow records follow remapped values so the next
inference run does not mistake the migration for manual edits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(runnerOverrides{dryRun: dryRun}, func(runCtx context.Context, r *engine.Runner) error {
				summary, err := r.Remap(runCtx, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Examined %d rated items: %d remapped, %d without a mapping.\n",
					summary.Examined, summary.Updated, summary.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing")
	return cmd
}
