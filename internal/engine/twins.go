package engine

import (
	"context"

	"github.com/CWuestefeld/plex-rating-utils/internal/inference"
	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
)

// runTwinsPhase resolves duplicate-track groups and propagates each
// group's manual consensus to its non-manual members. The commit unit
// is the whole group: the checkpoint advances only after every member
// write lands, so a resume replays at worst one group.
func (r *Runner) runTwinsPhase(ctx context.Context, sess *session) (PhaseSummary, error) {
	ps := PhaseSummary{Phase: PhaseTwins, State: StateRunning}

	groups := inference.ResolveTwins(sess.Library, r.params.Twins)
	r.logger.Info("twin groups resolved", logging.Int("groups", len(groups)))

	resumeAfter, resumed, err := r.resumePoint(ctx, sess, PhaseTwins)
	if err != nil {
		return ps, err
	}
	ps.Resumed = resumed

	isManualID := func(id string) bool {
		item := sess.Library.Item(id)
		return item != nil && sess.IsManual(item)
	}

	for _, group := range groups {
		if group.Key <= resumeAfter {
			continue
		}

		agreed, ok := group.AgreedRating(isManualID)
		if ok {
			for _, member := range group.Members {
				// Manual members anchor the consensus; only the
				// engine-owned members move toward it.
				if sess.IsManual(member) {
					continue
				}
				if err := r.applyItem(ctx, sess, member, agreed, group.Key, &ps); err != nil {
					ps.State = StateInterrupted
					return ps, interruptErr(err, PhaseTwins)
				}
			}
		}

		if err := r.commitBoundary(ctx, sess, PhaseTwins, group.Key); err != nil {
			ps.State = StateInterrupted
			return ps, err
		}
	}

	if !r.params.DryRun {
		if err := r.store.ClearCheckpoint(ctx, sess.Ref.ID, string(PhaseTwins)); err != nil {
			return ps, err
		}
	}
	ps.State = StateCompleted
	return ps, nil
}
