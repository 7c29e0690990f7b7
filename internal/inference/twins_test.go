package inference

import (
	"testing"
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
)

func twinTrack(id, title, albumID, albumTitle string, dur time.Duration, rating float64) *catalog.Item {
	return &catalog.Item{
		ID: id, Kind: catalog.KindTrack, Title: title,
		ParentID: albumID, ParentTitle: albumTitle,
		GrandparentID: "artist", GrandparentTitle: "The Band",
		Duration: dur, UserRating: rating,
	}
}

func twinLibrary(items ...*catalog.Item) *catalog.Library {
	base := []*catalog.Item{
		{ID: "artist", Kind: catalog.KindArtist, Title: "The Band"},
		{ID: "alb1", Kind: catalog.KindAlbum, Title: "Studio", ParentID: "artist", ParentTitle: "The Band"},
		{ID: "alb2", Kind: catalog.KindAlbum, Title: "Anthology", ParentID: "artist", ParentTitle: "The Band"},
		{ID: "alb3", Kind: catalog.KindAlbum, Title: "In Concert", ParentID: "artist", ParentTitle: "The Band", Moods: []string{LiveAlbumMood}},
	}
	return catalog.NewLibrary("Music", "stamp", append(base, items...))
}

func defaultPolicy() TwinPolicy {
	return TwinPolicy{
		Tolerance:            5 * time.Second,
		ExcludeKeywords:      []string{"live", "demo", "remix"},
		ExcludeParenthetical: true,
		ExcludeLiveAlbums:    true,
	}
}

func TestResolveTwinsGroupsDuplicates(t *testing.T) {
	lib := twinLibrary(
		twinTrack("t1", "Hit Song", "alb1", "Studio", 200*time.Second, 4.0),
		twinTrack("t2", "Hit Song", "alb2", "Anthology", 202*time.Second, 0),
		twinTrack("t3", "Other Song", "alb1", "Studio", 180*time.Second, 0),
	)
	groups := ResolveTwins(lib, defaultPolicy())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if len(groups[0].Members) != 2 {
		t.Fatalf("group has %d members, want 2", len(groups[0].Members))
	}
}

func TestResolveTwinsToleranceSplits(t *testing.T) {
	lib := twinLibrary(
		twinTrack("t1", "Hit Song", "alb1", "Studio", 200*time.Second, 0),
		twinTrack("t2", "Hit Song", "alb2", "Anthology", 260*time.Second, 0),
	)
	groups := ResolveTwins(lib, defaultPolicy())
	if len(groups) != 0 {
		t.Fatalf("durations outside tolerance must not group, got %d groups", len(groups))
	}
}

func TestResolveTwinsExclusions(t *testing.T) {
	lib := twinLibrary(
		// Parenthetical qualifier.
		twinTrack("t1", "Hit Song (Acoustic)", "alb1", "Studio", 200*time.Second, 0),
		twinTrack("t2", "Hit Song (Acoustic)", "alb2", "Anthology", 200*time.Second, 0),
		// Keyword in album title.
		twinTrack("t3", "Deep Cut", "alb1", "Studio", 150*time.Second, 0),
		twinTrack("t4", "Deep Cut", "alb2", "Demo Sessions", 150*time.Second, 0),
		// Live album mood.
		twinTrack("t5", "Anthem", "alb1", "Studio", 210*time.Second, 0),
		twinTrack("t6", "Anthem", "alb3", "In Concert", 210*time.Second, 0),
		// Unknown duration.
		twinTrack("t7", "Ghost", "alb1", "Studio", 0, 0),
		twinTrack("t8", "Ghost", "alb2", "Anthology", 0, 0),
	)
	groups := ResolveTwins(lib, defaultPolicy())
	if len(groups) != 0 {
		t.Fatalf("all candidates are excluded, got %d groups", len(groups))
	}
}

func TestAgreedRatingManualMean(t *testing.T) {
	lib := twinLibrary(
		twinTrack("t1", "Hit Song", "alb1", "Studio", 200*time.Second, 4.0),
		twinTrack("t2", "Hit Song", "alb2", "Anthology", 201*time.Second, 3.0),
		twinTrack("t3", "Hit Song", "alb2", "Anthology", 199*time.Second, 2.5),
	)
	groups := ResolveTwins(lib, defaultPolicy())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	manual := map[string]bool{"t1": true, "t2": true}
	agreed, ok := groups[0].AgreedRating(func(id string) bool { return manual[id] })
	if !ok {
		t.Fatal("expected a manual consensus")
	}
	if !almostEqual(agreed, 3.5) {
		t.Errorf("agreed = %.4f, want mean of manual members 3.5", agreed)
	}
}

func TestAgreedRatingNoManualMembers(t *testing.T) {
	lib := twinLibrary(
		twinTrack("t1", "Hit Song", "alb1", "Studio", 200*time.Second, 4.0),
		twinTrack("t2", "Hit Song", "alb2", "Anthology", 201*time.Second, 4.0),
	)
	groups := ResolveTwins(lib, defaultPolicy())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if _, ok := groups[0].AgreedRating(func(string) bool { return false }); ok {
		t.Error("no consensus may be manufactured from inferred-only members")
	}
}
