package catalog

import "time"

// NoisePolicy decides which tracks are excluded from aggregation:
// interstitial material (intros, skits, applause) and anything shorter
// than the configured minimum runtime.
type NoisePolicy struct {
	MinDuration time.Duration
	Keywords    []string
}

// Excluded reports whether the track should not count toward its
// parent's posterior. Non-track items are never noise. A zero duration
// means the store did not report one and is not treated as short.
func (p NoisePolicy) Excluded(item *Item) bool {
	if item == nil || item.Kind != KindTrack {
		return false
	}
	if p.MinDuration > 0 && item.Duration > 0 && item.Duration < p.MinDuration {
		return true
	}
	for _, kw := range p.Keywords {
		if ContainsFold(item.Title, kw) {
			return true
		}
	}
	return false
}
