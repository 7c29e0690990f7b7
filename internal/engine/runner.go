package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/inference"
	"github.com/CWuestefeld/plex-rating-utils/internal/logging"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
	"github.com/CWuestefeld/plex-rating-utils/internal/statestore"
)

// CatalogReader yields one full library snapshot.
type CatalogReader interface {
	FetchLibrary(ctx context.Context) (*catalog.Library, error)
}

// CatalogWriter applies rating and marker-tag changes to the external
// catalog. Implementations must be idempotent under retry of the same
// value.
type CatalogWriter interface {
	Rate(ctx context.Context, itemID string, stars float64) error
	Unrate(ctx context.Context, itemID string) error
	AddMarker(ctx context.Context, kind catalog.Kind, itemID, tag string) error
	RemoveMarker(ctx context.Context, kind catalog.Kind, itemID, tag string) error
}

// Runner executes inference phases and admin operations against one
// library. Exactly one Runner may operate on a state directory at a
// time; the store's file lock enforces it.
type Runner struct {
	store  *statestore.Store
	reader CatalogReader
	writer CatalogWriter
	params Params
	logger *slog.Logger
	stop   atomic.Bool
}

// RequestStop asks the runner to halt at the next commit boundary,
// leaving the checkpoint at the last committed item. Unlike context
// cancellation it never aborts an in-flight commit. Safe from any
// goroutine, typically a signal handler.
func (r *Runner) RequestStop() { r.stop.Store(true) }

// New constructs a Runner. The logger may be nil.
func New(store *statestore.Store, reader CatalogReader, writer CatalogWriter, params Params, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: store, reader: reader, writer: writer, params: params, logger: logger}
}

// RunContext is the per-invocation working set: the catalog snapshot,
// the shadow records, and the constants fixed for the whole run. The
// prior and epsilon are computed once and never change mid-run so
// results stay reproducible.
type RunContext struct {
	Library *catalog.Library
	Ref     statestore.LibraryRef
	Records map[string]*ownership.Record
	Prior   float64
	PriorN  int
	Epsilon float64
}

// IsManual reports whether an item's current rating belongs to a
// human: it is rated and either the engine never wrote it or the live
// value drifted beyond tolerance from what the engine wrote.
func (rc *RunContext) IsManual(item *catalog.Item) bool {
	if !item.Rated() {
		return false
	}
	rec := rc.Records[item.ID]
	if rec == nil || !rec.HasInferred() {
		return true
	}
	if rec.Class == ownership.ClassManual {
		return true
	}
	return math.Abs(item.UserRating-rec.Inferred) > rc.Epsilon
}

// session adds the mutable pacing state to a RunContext.
type session struct {
	*RunContext
	batch int
}

// Prepare reads the catalog and the shadow state, verifies the library
// identity stamp, and fixes the run constants. All engine operations
// start here.
func (r *Runner) Prepare(ctx context.Context) (*RunContext, error) {
	lib, err := r.reader.FetchLibrary(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}

	ref, err := r.store.EnsureLibrary(ctx, lib.Name, lib.Stamp)
	if err != nil {
		return nil, err
	}
	if ref.Stamp != lib.Stamp {
		r.logger.Warn("shadow state was built for a different library",
			logging.String("library", lib.Name),
			logging.String("stored_stamp", ref.Stamp),
			logging.String("live_stamp", lib.Stamp))
		if !r.params.AllowStampMismatch {
			return nil, fmt.Errorf("%w: stored %s, live %s (rerun with --allow-stamp-mismatch to rebind)",
				ErrIdentityMismatch, ref.Stamp, lib.Stamp)
		}
		if !r.params.DryRun {
			if err := r.store.UpdateLibraryStamp(ctx, ref.ID, lib.Stamp); err != nil {
				return nil, err
			}
		}
		ref.Stamp = lib.Stamp
	}

	records, err := r.store.LoadRecords(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	rc := &RunContext{
		Library: lib,
		Ref:     ref,
		Records: records,
		Epsilon: ownership.Epsilon(lib.Size(), r.params.DynamicPrecision),
	}
	rc.Prior, rc.PriorN = inference.GlobalPrior(lib.Tracks, r.params.Noise, rc.IsManual)

	r.logger.Info("run context ready",
		logging.String("library", lib.Name),
		logging.Int("items", lib.Size()),
		logging.Float64("prior", rc.Prior),
		logging.Int("prior_ratings", rc.PriorN),
		logging.Float64("epsilon", rc.Epsilon),
		logging.Bool("dry_run", r.params.DryRun))
	return rc, nil
}

// Run executes the given phases in order against one snapshot. On
// interrupt the summary carries the partial results and the error is
// ErrInterrupted; the persisted checkpoints allow a later resume.
func (r *Runner) Run(ctx context.Context, phases []Phase) (*Summary, error) {
	r.stop.Store(false)
	rc, err := r.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	sess := &session{RunContext: rc}

	summary := &Summary{
		RunID:      uuid.NewString(),
		Library:    rc.Library.Name,
		Items:      rc.Library.Size(),
		Prior:      rc.Prior,
		PriorCount: rc.PriorN,
		Epsilon:    rc.Epsilon,
		DryRun:     r.params.DryRun,
	}

	for _, phase := range phases {
		if phase == PhaseTwins && !r.params.TwinsEnabled {
			summary.Phases = append(summary.Phases, PhaseSummary{Phase: phase, State: StateNotStarted})
			continue
		}
		r.logger.Info("phase starting", logging.String("phase", string(phase)), logging.String("run", summary.RunID))
		ps, phaseErr := r.runPhase(ctx, sess, phase)
		summary.Phases = append(summary.Phases, ps)
		r.logger.Info("phase finished",
			logging.String("phase", string(phase)),
			logging.String("state", string(ps.State)),
			logging.Int("updated", ps.Updated),
			logging.Int("suppressed", ps.Suppressed),
			logging.Int("blocked", ps.Blocked),
			logging.Int("takeovers", ps.Takeovers))
		if phaseErr != nil {
			return summary, phaseErr
		}
	}
	return summary, nil
}

func (r *Runner) runPhase(ctx context.Context, sess *session, phase Phase) (PhaseSummary, error) {
	if phase == PhaseTwins {
		return r.runTwinsPhase(ctx, sess)
	}
	return r.runItemsPhase(ctx, sess, phase)
}

// runItemsPhase drives one aggregation or inheritance pass in ordering
// key sequence, resuming strictly after any persisted checkpoint.
func (r *Runner) runItemsPhase(ctx context.Context, sess *session, phase Phase) (PhaseSummary, error) {
	ps := PhaseSummary{Phase: phase, State: StateRunning}

	items, compute := r.phaseWork(sess.RunContext, phase)

	resumeAfter, resumed, err := r.resumePoint(ctx, sess, phase)
	if err != nil {
		return ps, err
	}
	ps.Resumed = resumed

	for _, item := range items {
		if item.OrderKey <= resumeAfter {
			continue
		}
		proposed, ok := compute(item)
		if ok {
			if err := r.applyItem(ctx, sess, item, proposed, "", &ps); err != nil {
				ps.State = StateInterrupted
				return ps, interruptErr(err, phase)
			}
		}
		if err := r.commitBoundary(ctx, sess, phase, item.OrderKey); err != nil {
			ps.State = StateInterrupted
			return ps, err
		}
	}

	if !r.params.DryRun {
		if err := r.store.ClearCheckpoint(ctx, sess.Ref.ID, string(phase)); err != nil {
			return ps, err
		}
	}
	ps.State = StateCompleted
	return ps, nil
}

// phaseWork returns the ordered item slice and the candidate-rating
// function for one phase. compute returns false when the phase has no
// proposal for the item (for example an orphaned child in a down
// phase); the item still commits so the checkpoint can advance.
func (r *Runner) phaseWork(rc *RunContext, phase Phase) ([]*catalog.Item, func(*catalog.Item) (float64, bool)) {
	lib := rc.Library
	switch phase {
	case PhaseAlbumUp:
		return lib.Albums, func(album *catalog.Item) (float64, bool) {
			// Albums with no evidence of their own are left for the
			// inheritance pass.
			ratings := r.trustedChildRatings(rc, album)
			if len(ratings) == 0 && !album.HasCritic() {
				return 0, false
			}
			return inference.Posterior(ratings, album.CriticRating, rc.Prior, r.params.Blend), true
		}
	case PhaseArtistUp:
		return lib.Artists, func(artist *catalog.Item) (float64, bool) {
			// Critic ratings exist at album level only. With no manual
			// albums the posterior regresses to the prior, which is
			// still the best artist-level estimate available.
			return inference.Posterior(r.trustedChildRatings(rc, artist), 0, rc.Prior, r.params.Blend), true
		}
	case PhaseAlbumDown:
		return lib.Albums, func(album *catalog.Item) (float64, bool) {
			// Aggregation owns any album it had evidence for.
			if len(r.trustedChildRatings(rc, album)) > 0 || album.HasCritic() {
				return 0, false
			}
			return r.inheritFrom(rc, album, r.params.AlbumGravity)
		}
	case PhaseTrackDown:
		return lib.Tracks, func(track *catalog.Item) (float64, bool) {
			return r.inheritFrom(rc, track, r.params.TrackGravity)
		}
	}
	return nil, nil
}

// trustedChildRatings collects the manual, non-noise child ratings
// feeding a parent's posterior. Engine-authored child ratings are
// excluded: feeding them back in would let inferred values reinforce
// themselves.
func (r *Runner) trustedChildRatings(rc *RunContext, parent *catalog.Item) []float64 {
	var ratings []float64
	for _, child := range rc.Library.ChildrenOf(parent.ID) {
		if !child.Rated() || r.params.Noise.Excluded(child) {
			continue
		}
		if !rc.IsManual(child) {
			continue
		}
		ratings = append(ratings, child.UserRating)
	}
	return ratings
}

func (r *Runner) inheritFrom(rc *RunContext, item *catalog.Item, gravity float64) (float64, bool) {
	// Twin-linked items take their value from group consensus, not
	// from the parent.
	if rec := rc.Records[item.ID]; rec != nil && rec.TwinGroup != "" {
		return 0, false
	}
	parent := rc.Library.Parent(item)
	if parent == nil || !parent.Rated() {
		return 0, false
	}
	return inference.Inherit(parent.UserRating, rc.IsManual(parent), gravity, rc.Prior), true
}

// resumePoint loads the phase checkpoint. A checkpoint stamped for a
// different library identity is discarded rather than trusted.
func (r *Runner) resumePoint(ctx context.Context, sess *session, phase Phase) (string, bool, error) {
	cp, err := r.store.LoadCheckpoint(ctx, sess.Ref.ID, string(phase))
	if err != nil {
		return "", false, err
	}
	if cp == nil {
		return "", false, nil
	}
	if cp.Stamp != sess.Ref.Stamp {
		r.logger.Warn("discarding checkpoint from another library identity",
			logging.String("phase", string(phase)))
		return "", false, nil
	}
	r.logger.Info("resuming from checkpoint",
		logging.String("phase", string(phase)),
		logging.String("after", cp.LastKey))
	return cp.LastKey, true, nil
}

// applyItem runs the ownership gate for one proposal and performs the
// resulting write, suppression, or manual-takeover bookkeeping. The
// in-memory snapshot is updated alongside the shadow state so later
// phases in the same run observe committed values.
func (r *Runner) applyItem(ctx context.Context, sess *session, item *catalog.Item, proposed float64, twinGroup string, ps *PhaseSummary) error {
	rec := sess.Records[item.ID]
	out := ownership.Evaluate(item.UserRating, proposed, rec, sess.Epsilon)

	switch out.Action {
	case ownership.ActionBlock:
		ps.Blocked++
		if out.Takeover {
			ps.Takeovers++
			r.logger.Info("manual takeover detected",
				logging.String("item", item.ID),
				logging.String("title", item.Title))
			taken := *rec
			taken.Class = ownership.ClassManual
			if !r.params.DryRun {
				if err := r.store.PutRecord(ctx, sess.Ref.ID, &taken); err != nil {
					return err
				}
				if err := r.writer.RemoveMarker(ctx, item.Kind, item.ID, r.params.MarkerTag); err != nil {
					return fmt.Errorf("release takeover %s: %w", item.ID, err)
				}
			}
			sess.Records[item.ID] = &taken
		}
		return nil

	case ownership.ActionSuppress:
		ps.Suppressed++
		// A suppressed twin member still gets its group tag recorded.
		if twinGroup != "" && rec != nil && rec.TwinGroup != twinGroup {
			tagged := *rec
			tagged.TwinGroup = twinGroup
			if !r.params.DryRun {
				if err := r.store.PutRecord(ctx, sess.Ref.ID, &tagged); err != nil {
					return err
				}
			}
			sess.Records[item.ID] = &tagged
		}
		return nil
	}

	if !r.params.DryRun {
		if err := r.writer.Rate(ctx, item.ID, proposed); err != nil {
			return fmt.Errorf("write rating for %s: %w", item.ID, err)
		}
		if tag := r.params.MarkerTag; tag != "" && !item.HasMood(tag) {
			if err := r.writer.AddMarker(ctx, item.Kind, item.ID, tag); err != nil {
				return fmt.Errorf("tag item %s: %w", item.ID, err)
			}
			item.Moods = append(item.Moods, tag)
		}
	}

	updated := &ownership.Record{
		ItemID:   item.ID,
		Kind:     item.Kind,
		Inferred: proposed,
		Class:    ownership.ClassInferred,
	}
	if twinGroup != "" {
		updated.TwinGroup = twinGroup
	} else if rec != nil {
		updated.TwinGroup = rec.TwinGroup
	}
	if !r.params.DryRun {
		if err := r.store.PutRecord(ctx, sess.Ref.ID, updated); err != nil {
			return err
		}
	}
	sess.Records[item.ID] = updated
	item.UserRating = proposed

	ps.Updated++
	sess.batch++
	return nil
}

// commitBoundary advances the checkpoint past the committed key, pays
// down any due cooldown, and honors a pending interrupt. This is the
// only place a run may stop.
func (r *Runner) commitBoundary(ctx context.Context, sess *session, phase Phase, key string) error {
	if !r.params.DryRun {
		if err := r.store.SaveCheckpoint(ctx, sess.Ref.ID, string(phase), key, sess.Ref.Stamp); err != nil {
			return err
		}
	}

	if sess.batch >= r.params.CooldownBatch && r.params.CooldownPause > 0 {
		r.logger.Debug("cooldown pause",
			logging.String("phase", string(phase)),
			logging.Duration("pause", r.params.CooldownPause))
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrInterrupted, phase)
		case <-time.After(r.params.CooldownPause):
		}
		sess.batch = 0
	}

	if r.stop.Load() || ctx.Err() != nil {
		return fmt.Errorf("%w: %s", ErrInterrupted, phase)
	}
	return nil
}

// interruptErr folds context cancellation into the interrupt error so
// callers see one resumable condition; other failures pass through.
func interruptErr(err error, phase Phase) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrInterrupted, phase)
	}
	return err
}
