package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

// VerifyEntry is one disagreement between the shadow state and the
// live catalog.
type VerifyEntry struct {
	ItemID   string
	Title    string
	Expected float64
	Found    float64
}

// VerifyReport is the outcome of a read-only consistency check.
type VerifyReport struct {
	Checked int
	// Overrides are items whose live rating no longer matches the value
	// the engine wrote. These become manual takeovers on the next run.
	Overrides []VerifyEntry
	// Orphans are shadow records whose item vanished from the catalog.
	Orphans []string
}

// Verify compares every shadow record against the live catalog without
// writing anything.
func (r *Runner) Verify(ctx context.Context) (*VerifyReport, error) {
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{}
	for id, rec := range rc.Records {
		if !rec.HasInferred() {
			continue
		}
		report.Checked++
		item := rc.Library.Item(id)
		if item == nil {
			report.Orphans = append(report.Orphans, id)
			continue
		}
		if math.Abs(item.UserRating-rec.Inferred) > 0.01 {
			report.Overrides = append(report.Overrides, VerifyEntry{
				ItemID:   id,
				Title:    item.Title,
				Expected: rec.Inferred,
				Found:    item.UserRating,
			})
		}
	}
	return report, nil
}

// CleanupSummary is the outcome of a full engine retraction.
type CleanupSummary struct {
	// Removed counts engine-authored ratings that were unset.
	Removed int
	// Preserved counts records left alone because the live rating
	// diverged from the engine's value, meaning a human took over.
	Preserved int
	// Swept counts marker-tagged items with no shadow record that were
	// cleaned by the safety sweep.
	Swept int
	// Orphans counts records dropped because their item vanished.
	Orphans int
}

// Cleanup retracts everything the engine wrote: each recorded inferred
// rating still matching the live value is unset and untagged, and the
// shadow record is dropped. Ratings a human has since changed are
// preserved. A second sweep catches marker-tagged items that lost
// their record, using the half-star test: humans rate in half-star
// steps while the engine writes fractional posteriors.
func (r *Runner) Cleanup(ctx context.Context) (*CleanupSummary, error) {
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	sess := &session{RunContext: rc}

	summary := &CleanupSummary{}
	for _, id := range sortedRecordIDs(rc.Records) {
		rec := rc.Records[id]
		item := rc.Library.Item(id)
		if item == nil {
			summary.Orphans++
			if !r.params.DryRun {
				if err := r.store.DeleteRecord(ctx, rc.Ref.ID, id); err != nil {
					return summary, err
				}
			}
			continue
		}

		if rec.HasInferred() && rec.Class == ownership.ClassInferred &&
			math.Abs(item.UserRating-rec.Inferred) <= rc.Epsilon {
			if !r.params.DryRun {
				if err := r.writer.Unrate(ctx, id); err != nil {
					return summary, err
				}
				if tag := r.params.MarkerTag; tag != "" && item.HasMood(tag) {
					if err := r.writer.RemoveMarker(ctx, item.Kind, id, tag); err != nil {
						return summary, err
					}
				}
				if err := r.store.DeleteRecord(ctx, rc.Ref.ID, id); err != nil {
					return summary, err
				}
			}
			item.UserRating = 0
			delete(rc.Records, id)
			summary.Removed++
			sess.batch++
		} else {
			summary.Preserved++
		}

		if err := r.pace(ctx, sess); err != nil {
			return summary, err
		}
	}

	if tag := r.params.MarkerTag; tag != "" {
		for _, item := range rc.Library.All() {
			if !item.HasMood(tag) {
				continue
			}
			if _, tracked := rc.Records[item.ID]; tracked {
				continue
			}
			r.logger.Warn("marker without shadow record",
				logging.String("item", item.ID),
				logging.String("title", item.Title))
			if !r.params.DryRun {
				if item.Rated() && !halfStar(item.UserRating) {
					if err := r.writer.Unrate(ctx, item.ID); err != nil {
						return summary, err
					}
				}
				if err := r.writer.RemoveMarker(ctx, item.Kind, item.ID, tag); err != nil {
					return summary, err
				}
			}
			summary.Swept++
			sess.batch++
			if err := r.pace(ctx, sess); err != nil {
				return summary, err
			}
		}
	}

	// The shadow state no longer describes anything; stale checkpoints
	// must not survive into the next run.
	if !r.params.DryRun {
		for _, phase := range AllPhases() {
			if err := r.store.ClearCheckpoint(ctx, rc.Ref.ID, string(phase)); err != nil {
				return summary, err
			}
		}
	}
	return summary, nil
}

// Reconstruct rebuilds lost shadow records from the marker tag: every
// tagged, rated item with no record is re-registered as engine-owned
// at its current value.
func (r *Runner) Reconstruct(ctx context.Context) (int, error) {
	if r.params.MarkerTag == "" {
		return 0, ErrMarkerDisabled
	}
	rc, err := r.Prepare(ctx)
	if err != nil {
		return 0, err
	}

	var restored int
	for _, item := range rc.Library.All() {
		if !item.HasMood(r.params.MarkerTag) || !item.Rated() {
			continue
		}
		if _, tracked := rc.Records[item.ID]; tracked {
			continue
		}
		rec := &ownership.Record{
			ItemID:   item.ID,
			Kind:     item.Kind,
			Inferred: item.UserRating,
			Class:    ownership.ClassInferred,
		}
		if !r.params.DryRun {
			if err := r.store.PutRecord(ctx, rc.Ref.ID, rec); err != nil {
				return restored, err
			}
		}
		rc.Records[item.ID] = rec
		restored++
	}
	r.logger.Info("shadow records reconstructed", logging.Int("restored", restored))
	return restored, nil
}

// pace pays down the cooldown and honors interrupts between admin
// writes, mirroring the inference commit boundary without checkpoints.
func (r *Runner) pace(ctx context.Context, sess *session) error {
	if sess.batch >= r.params.CooldownBatch && r.params.CooldownPause > 0 {
		select {
		case <-ctx.Done():
			return ErrInterrupted
		case <-time.After(r.params.CooldownPause):
		}
		sess.batch = 0
	}
	if r.stop.Load() || ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}

// sortedRecordIDs gives a stable iteration order over the record map.
func sortedRecordIDs(records map[string]*ownership.Record) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// halfStar reports whether a rating sits on the half-star grid users
// rate on.
func halfStar(stars float64) bool {
	doubled := stars * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}
