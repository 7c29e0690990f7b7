package engine

import "fmt"

// Phase identifies one pass over the catalog.
type Phase string

const (
	// PhaseAlbumUp aggregates track ratings into album posteriors.
	PhaseAlbumUp Phase = "album-up"
	// PhaseArtistUp aggregates album ratings into artist posteriors.
	PhaseArtistUp Phase = "artist-up"
	// PhaseAlbumDown inherits artist ratings down to unrated albums.
	PhaseAlbumDown Phase = "album-down"
	// PhaseTrackDown inherits album ratings down to unrated tracks.
	PhaseTrackDown Phase = "track-down"
	// PhaseTwins synchronizes duplicate-track groups.
	PhaseTwins Phase = "twins"
)

// AllPhases returns the full sequence in execution order. Aggregation
// runs before inheritance so parents are settled when children inherit;
// twins run last so manual consensus overrides inherited values.
func AllPhases() []Phase {
	return []Phase{PhaseAlbumUp, PhaseArtistUp, PhaseAlbumDown, PhaseTrackDown, PhaseTwins}
}

// ParsePhase maps a CLI argument to a phase.
func ParsePhase(name string) (Phase, error) {
	for _, phase := range AllPhases() {
		if string(phase) == name {
			return phase, nil
		}
	}
	return "", fmt.Errorf("unknown phase %q", name)
}

// PhaseState is the lifecycle of one phase within a run.
type PhaseState string

const (
	StateNotStarted  PhaseState = "not-started"
	StateRunning     PhaseState = "running"
	StateInterrupted PhaseState = "interrupted"
	StateCompleted   PhaseState = "completed"
)
