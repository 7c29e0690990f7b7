package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CWuestefeld/plex-rating-utils/internal/engine"
	"github.com/CWuestefeld/plex-rating-utils/internal/report"
)

func newRankingsCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var limit int

	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show the best and worst rated items of one level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("--top must be at least 1")
			}

			return ctx.withRunner(runnerOverrides{dryRun: true}, func(runCtx context.Context, r *engine.Runner) error {
				rc, err := r.Prepare(runCtx)
				if err != nil {
					return err
				}
				top, bottom := report.Rankings(rc.Library, kind, limit, rc.IsManual)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Top %d %ss\n", len(top), kind)
				fmt.Fprintln(out, rankingTable(top))
				fmt.Fprintf(out, "Bottom %d %ss\n", len(bottom), kind)
				fmt.Fprintln(out, rankingTable(bottom))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "artist", "Level to rank: artist, album, or track")
	cmd.Flags().IntVarP(&limit, "top", "t", 10, "Entries per list")
	return cmd
}

func rankingTable(entries []report.RankedItem) string {
	rows := make([][]cell, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []cell{
			countCell(i + 1),
			textCell(e.Title),
			textCell(e.Artist),
			starsCell(e.Rating),
			textCell(string(e.Class)),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Artist", "Rating", "Source"},
		rows,
	)
}

func newCoverageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "Show rating coverage per library level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(runnerOverrides{dryRun: true}, func(runCtx context.Context, r *engine.Runner) error {
				rc, err := r.Prepare(runCtx)
				if err != nil {
					return err
				}
				rows := make([][]cell, 0, 3)
				for _, c := range report.Coverage(rc.Library, rc.IsManual) {
					rows = append(rows, []cell{
						textCell(string(c.Kind)),
						countCell(c.Total),
						countCell(c.Rated),
						countCell(c.Manual),
						countCell(c.Inferred),
						percentCell(c.Percent()),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Level", "Total", "Rated", "Manual", "Inferred", "Coverage"},
					rows,
				))
				return nil
			})
		},
	}
}
