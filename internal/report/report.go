// Package report computes the library statistics behind the rankings
// and coverage commands. It only derives data; rendering belongs to
// the CLI.
package report

import (
	"sort"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
	"github.com/CWuestefeld/plex-rating-utils/internal/ownership"
)

// RankedItem is one entry in a rankings listing.
type RankedItem struct {
	ItemID string
	Title  string
	Artist string
	Rating float64
	Class  ownership.Class
}

// Rankings lists the best and worst rated items of one kind, each
// limited to n entries. Unrated items never rank. Ties break on the
// deterministic ordering key so repeated invocations agree.
func Rankings(lib *catalog.Library, kind catalog.Kind, n int, isManual func(*catalog.Item) bool) (top, bottom []RankedItem) {
	items := lib.Items(kind)
	rated := make([]*catalog.Item, 0, len(items))
	for _, item := range items {
		if item.Rated() {
			rated = append(rated, item)
		}
	}
	sort.SliceStable(rated, func(a, b int) bool {
		if rated[a].UserRating != rated[b].UserRating {
			return rated[a].UserRating > rated[b].UserRating
		}
		return rated[a].OrderKey < rated[b].OrderKey
	})

	entry := func(item *catalog.Item) RankedItem {
		class := ownership.ClassInferred
		if isManual != nil && isManual(item) {
			class = ownership.ClassManual
		}
		return RankedItem{
			ItemID: item.ID,
			Title:  item.Title,
			Artist: item.ArtistTitle(),
			Rating: item.UserRating,
			Class:  class,
		}
	}

	if n > len(rated) {
		n = len(rated)
	}
	for _, item := range rated[:n] {
		top = append(top, entry(item))
	}
	for i := 0; i < n; i++ {
		bottom = append(bottom, entry(rated[len(rated)-1-i]))
	}
	return top, bottom
}

// CoverageRow summarizes rating coverage for one hierarchy level.
type CoverageRow struct {
	Kind     catalog.Kind
	Total    int
	Rated    int
	Manual   int
	Inferred int
}

// Percent is the rated share of the level, 0-100.
func (r CoverageRow) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Rated) / float64(r.Total) * 100
}

// Coverage breaks rating coverage down per level, splitting rated
// items into human and engine authorship.
func Coverage(lib *catalog.Library, isManual func(*catalog.Item) bool) []CoverageRow {
	kinds := []catalog.Kind{catalog.KindArtist, catalog.KindAlbum, catalog.KindTrack}
	rows := make([]CoverageRow, 0, len(kinds))
	for _, kind := range kinds {
		row := CoverageRow{Kind: kind}
		for _, item := range lib.Items(kind) {
			row.Total++
			if !item.Rated() {
				continue
			}
			row.Rated++
			if isManual != nil && isManual(item) {
				row.Manual++
			} else {
				row.Inferred++
			}
		}
		rows = append(rows, row)
	}
	return rows
}
