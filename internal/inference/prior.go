package inference

import "github.com/CWuestefeld/plex-rating-utils/internal/catalog"

// DefaultPrior is the baseline used when no manual track rating exists
// anywhere in the library.
const DefaultPrior = 3.0

// GlobalPrior computes the library-wide mean over rated, non-excluded
// tracks that the caller classifies as manually rated. It is computed
// once per run and treated as immutable for every aggregation and
// inheritance call in that run. Returns the prior and the number of
// ratings it was built from.
func GlobalPrior(tracks []*catalog.Item, noise catalog.NoisePolicy, isManual func(*catalog.Item) bool) (float64, int) {
	var sum float64
	var n int
	for _, track := range tracks {
		if !track.Rated() || noise.Excluded(track) {
			continue
		}
		if isManual != nil && !isManual(track) {
			continue
		}
		sum += track.UserRating
		n++
	}
	if n == 0 {
		return DefaultPrior, 0
	}
	return sum / float64(n), n
}
