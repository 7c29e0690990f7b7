package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
)

func newInferCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var allowMismatch bool

	cmd := &cobra.Command{
		Use:   "infer [phase]",
		Short: "Run the rating inference phases",
		Long: `Run the inference pipeline against the configured library.

With no argument every phase runs in order: album-up, artist-up,
album-down, track-down, twins. Naming a single phase runs just that
one, resuming from its checkpoint if a previous run was interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phases := engine.AllPhases()
			if len(args) == 1 {
				phase, err := engine.ParsePhase(args[0])
				if err != nil {
					return err
				}
				phases = []engine.Phase{phase}
			}

			ov := runnerOverrides{dryRun: dryRun, allowStampMismatch: allowMismatch}
			return ctx.withRunner(ov, func(runCtx context.Context, r *engine.Runner) error {
				summary, err := r.Run(runCtx, phases)
				if summary != nil {
					printRunSummary(cmd, summary)
				}
				if errors.Is(err, engine.ErrInterrupted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Interrupted; rerun to resume from the checkpoint.")
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Compute and report without writing anything")
	cmd.Flags().BoolVar(&allowMismatch, "allow-stamp-mismatch", false, "Proceed when the state was built for a different library identity")
	return cmd
}

func printRunSummary(cmd *cobra.Command, s *engine.Summary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Library %s: %d items, prior %.2f from %d manual ratings, tolerance %.3f\n",
		s.Library, s.Items, s.Prior, s.PriorCount, s.Epsilon)
	if s.DryRun {
		fmt.Fprintln(out, "Dry run: no ratings were written.")
	}

	rows := make([][]cell, 0, len(s.Phases))
	for _, ps := range s.Phases {
		state := string(ps.State)
		if ps.Resumed {
			state += " (resumed)"
		}
		rows = append(rows, []cell{
			textCell(string(ps.Phase)),
			textCell(state),
			countCell(ps.Updated),
			countCell(ps.Suppressed),
			countCell(ps.Blocked),
			countCell(ps.Takeovers),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Phase", "State", "Updated", "Suppressed", "Blocked", "Takeovers"},
		rows,
	))
	fmt.Fprintf(out, "Total: %d updated, %d suppressed\n", s.TotalUpdated(), s.TotalSuppressed())
}
