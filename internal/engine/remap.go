package engine

import (
	"context"
	"fmt"

	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
)

// DefaultRemap collapses the half-star scale onto whole stars, rounding
// the generous way listeners expect: 3.5 promotes to 4, 4.5 to 5.
func DefaultRemap() map[float64]float64 {
	return map[float64]float64{
		0.5: 1.0,
		1.0: 1.0,
		1.5: 1.0,
		2.0: 2.0,
		2.5: 2.0,
		3.0: 3.0,
		3.5: 4.0,
		4.0: 4.0,
		4.5: 5.0,
		5.0: 5.0,
	}
}

// RemapSummary is the outcome of one scale migration.
type RemapSummary struct {
	Examined int
	Updated  int
	// Skipped counts rated items whose value had no mapping entry,
	// typically fractional engine posteriors.
	Skipped int
}

// Remap rewrites every rated item of the library through the given
// scale mapping. Shadow records are kept aligned so the next inference
// run does not misread the migration as a manual takeover.
func (r *Runner) Remap(ctx context.Context, mapping map[float64]float64) (*RemapSummary, error) {
	if len(mapping) == 0 {
		mapping = DefaultRemap()
	}
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	sess := &session{RunContext: rc}

	summary := &RemapSummary{}
	for _, item := range rc.Library.All() {
		if !item.Rated() {
			continue
		}
		summary.Examined++

		target, ok := mapping[item.UserRating]
		if !ok {
			summary.Skipped++
			continue
		}
		if target == item.UserRating {
			continue
		}

		if !r.params.DryRun {
			if err := r.writer.Rate(ctx, item.ID, target); err != nil {
				return summary, fmt.Errorf("remap %s: %w", item.ID, err)
			}
		}
		if rec := rc.Records[item.ID]; rec.HasInferred() {
			updated := *rec
			updated.Inferred = target
			if !r.params.DryRun {
				if err := r.store.PutRecord(ctx, rc.Ref.ID, &updated); err != nil {
					return summary, err
				}
			}
			rc.Records[item.ID] = &updated
		}
		item.UserRating = target
		summary.Updated++
		sess.batch++

		if err := r.pace(ctx, sess); err != nil {
			return summary, err
		}
	}

	r.logger.Info("remap finished",
		logging.Int("examined", summary.Examined),
		logging.Int("updated", summary.Updated),
		logging.Int("skipped", summary.Skipped))
	return summary, nil
}
