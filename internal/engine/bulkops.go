package engine

import (
	"context"
	"fmt"

	"github.com/CWuestefeld/plex-rating-utils/internal/bulk"
	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

// ImportSummary is the outcome of one bulk rating import.
type ImportSummary struct {
	// Applied counts manual rows written to the catalog.
	Applied int
	// Reset counts inferred rows whose shadow record was dropped,
	// returning the item to engine ownership on the next run.
	Reset int
	// Rejected are rows that named unknown items or the wrong kind,
	// plus the parse rejections from the CSV reader.
	Rejected []bulk.RowError
}

// ImportRatings applies bulk rows of one kind. Manual rows write the
// rating and register the item as human-owned; inferred rows drop the
// shadow record so the next run recomputes the item from scratch. Bad
// rows are collected, not fatal.
func (r *Runner) ImportRatings(ctx context.Context, kind catalog.Kind, rows []bulk.Row, parseErrs []bulk.RowError) (*ImportSummary, error) {
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	sess := &session{RunContext: rc}

	summary := &ImportSummary{Rejected: parseErrs}
	for _, row := range rows {
		item := rc.Library.Item(row.ItemID)
		if item == nil {
			summary.Rejected = append(summary.Rejected, bulk.RowError{Line: row.Line, Message: fmt.Sprintf("unknown item %q", row.ItemID)})
			continue
		}
		if item.Kind != kind {
			summary.Rejected = append(summary.Rejected, bulk.RowError{Line: row.Line, Message: fmt.Sprintf("item %q is a %s, not a %s", row.ItemID, item.Kind, kind)})
			continue
		}

		switch row.Class {
		case ownership.ClassManual:
			rec := &ownership.Record{ItemID: item.ID, Kind: item.Kind, Class: ownership.ClassManual}
			if prev := rc.Records[item.ID]; prev != nil {
				rec.Inferred = prev.Inferred
				rec.TwinGroup = prev.TwinGroup
			}
			if !r.params.DryRun {
				if err := r.writer.Rate(ctx, item.ID, row.Rating); err != nil {
					return summary, fmt.Errorf("write rating for %s: %w", item.ID, err)
				}
				if err := r.store.PutRecord(ctx, rc.Ref.ID, rec); err != nil {
					return summary, err
				}
			}
			item.UserRating = row.Rating
			rc.Records[item.ID] = rec
			summary.Applied++
			sess.batch++

		case ownership.ClassInferred:
			if !r.params.DryRun {
				if err := r.store.DeleteRecord(ctx, rc.Ref.ID, item.ID); err != nil {
					return summary, err
				}
			}
			delete(rc.Records, item.ID)
			summary.Reset++
		}

		if err := r.pace(ctx, sess); err != nil {
			return summary, err
		}
	}

	r.logger.Info("bulk import finished",
		logging.String("kind", string(kind)),
		logging.Int("applied", summary.Applied),
		logging.Int("reset", summary.Reset),
		logging.Int("rejected", len(summary.Rejected)))
	return summary, nil
}

// ExportRatings snapshots every rated item of one kind with its
// derived classification, in ordering-key sequence.
func (r *Runner) ExportRatings(ctx context.Context, kind catalog.Kind) ([]bulk.Row, error) {
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	var rows []bulk.Row
	for _, item := range rc.Library.Items(kind) {
		if !item.Rated() {
			continue
		}
		class := ownership.ClassInferred
		if rc.IsManual(item) {
			class = ownership.ClassManual
		}
		rows = append(rows, bulk.Row{ItemID: item.ID, Rating: item.UserRating, Class: class})
	}
	return rows, nil
}
