package inference

import (
	"sort"
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
)

// LiveAlbumMood is the Plex mood tag marking an album as a live
// recording, which disqualifies its tracks from twin candidacy.
const LiveAlbumMood = "Live"

// TwinPolicy controls duplicate-track matching.
type TwinPolicy struct {
	// Tolerance is the maximum duration difference between two
	// instances of the same recording.
	Tolerance time.Duration
	// ExcludeKeywords reject a candidate when they match its title or
	// its album title ("live", "demo", "remix", ...).
	ExcludeKeywords []string
	// ExcludeParenthetical rejects titles carrying parenthetical
	// qualifiers such as "(Acoustic)".
	ExcludeParenthetical bool
	// ExcludeLiveAlbums rejects tracks on albums flagged live.
	ExcludeLiveAlbums bool
}

// TwinGroup is one resolved equivalence class of duplicate tracks.
// Groups are recomputed fresh every run; only the group tag may be
// persisted for discoverability.
type TwinGroup struct {
	Key     string
	Members []*catalog.Item
}

// AgreedRating returns the arithmetic mean of the manual members'
// ratings, or false when the group has no manual member. With no
// manual anchor no consensus is manufactured from inferred values.
func (g TwinGroup) AgreedRating(isManual func(id string) bool) (float64, bool) {
	var sum float64
	var n int
	for _, m := range g.Members {
		if m.Rated() && isManual != nil && isManual(m.ID) {
			sum += m.UserRating
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// candidate reports whether a track may participate in twin matching.
// Tracks with unknown durations are skipped: without a runtime the
// tolerance check cannot distinguish a re-recording from a duplicate.
func (p TwinPolicy) candidate(lib *catalog.Library, track *catalog.Item) bool {
	if track.Kind != catalog.KindTrack || track.Duration <= 0 {
		return false
	}
	if p.ExcludeParenthetical && catalog.HasParenthetical(track.Title) {
		return false
	}
	for _, kw := range p.ExcludeKeywords {
		if catalog.ContainsFold(track.Title, kw) || catalog.ContainsFold(track.ParentTitle, kw) {
			return false
		}
	}
	if p.ExcludeLiveAlbums {
		if album := lib.Parent(track); album != nil && album.HasMood(LiveAlbumMood) {
			return false
		}
	}
	return true
}

// ResolveTwins finds duplicate-track groups across the library:
// candidates sharing artist and normalized title are unioned pairwise
// when their durations fall within tolerance. Only groups with two or
// more members are returned, in deterministic order.
func ResolveTwins(lib *catalog.Library, policy TwinPolicy) []TwinGroup {
	// Pre-filter into (artist, title) buckets so the pairwise pass
	// never touches the full library cross product.
	buckets := make(map[string][]*catalog.Item)
	for _, track := range lib.Tracks {
		if !policy.candidate(lib, track) {
			continue
		}
		key := catalog.FoldKey(track.ArtistTitle()) + "\x1f" + catalog.FoldKey(track.Title)
		buckets[key] = append(buckets[key], track)
	}

	var groups []TwinGroup
	for key, members := range buckets {
		if len(members) < 2 {
			continue
		}
		uf := newUnionFind(len(members))
		for a := 0; a < len(members); a++ {
			for b := a + 1; b < len(members); b++ {
				diff := members[a].Duration - members[b].Duration
				if diff < 0 {
					diff = -diff
				}
				if diff <= policy.Tolerance {
					uf.union(a, b)
				}
			}
		}
		byRoot := make(map[int][]*catalog.Item)
		for idx, m := range members {
			root := uf.find(idx)
			byRoot[root] = append(byRoot[root], m)
		}
		for _, set := range byRoot {
			if len(set) < 2 {
				continue
			}
			sort.Slice(set, func(a, b int) bool { return set[a].OrderKey < set[b].OrderKey })
			groups = append(groups, TwinGroup{Key: key + "\x1f" + set[0].ID, Members: set})
		}
	}
	sort.Slice(groups, func(a, b int) bool { return groups[a].Key < groups[b].Key })
	return groups
}

// unionFind is a minimal disjoint-set over member indexes.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
