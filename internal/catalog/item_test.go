package catalog

import (
	"testing"
	"time"
)

func buildTestLibrary() *Library {
	items := []*Item{
		{ID: "a1", Kind: KindArtist, Title: "Zeta Band"},
		{ID: "a2", Kind: KindArtist, Title: "Alpha Crew"},
		{ID: "al1", Kind: KindAlbum, Title: "First", ParentID: "a2", ParentTitle: "Alpha Crew"},
		{ID: "al2", Kind: KindAlbum, Title: "Second", ParentID: "a1", ParentTitle: "Zeta Band"},
		{ID: "t1", Kind: KindTrack, Title: "Opener", ParentID: "al1", ParentTitle: "First", GrandparentID: "a2", GrandparentTitle: "Alpha Crew"},
		{ID: "t2", Kind: KindTrack, Title: "Closer", ParentID: "al1", ParentTitle: "First", GrandparentID: "a2", GrandparentTitle: "Alpha Crew"},
	}
	return NewLibrary("Music", "lib-uuid", items)
}

func TestNewLibraryOrdering(t *testing.T) {
	lib := buildTestLibrary()

	if lib.Size() != 6 {
		t.Fatalf("Size = %d, want 6", lib.Size())
	}
	if lib.Artists[0].ID != "a2" || lib.Artists[1].ID != "a1" {
		t.Errorf("artists not ordered by folded title: %s, %s", lib.Artists[0].ID, lib.Artists[1].ID)
	}
	if lib.Tracks[0].Title != "Closer" {
		t.Errorf("tracks within an album should order by title, got %q first", lib.Tracks[0].Title)
	}
}

func TestLibraryLookups(t *testing.T) {
	lib := buildTestLibrary()

	track := lib.Item("t1")
	if track == nil {
		t.Fatal("Item lookup failed")
	}
	album := lib.Parent(track)
	if album == nil || album.ID != "al1" {
		t.Fatalf("Parent of track = %v, want al1", album)
	}
	artist := lib.Parent(album)
	if artist == nil || artist.ID != "a2" {
		t.Fatalf("Parent of album = %v, want a2", artist)
	}
	kids := lib.ChildrenOf("al1")
	if len(kids) != 2 {
		t.Fatalf("ChildrenOf(al1) = %d items, want 2", len(kids))
	}
}

func TestNoisePolicy(t *testing.T) {
	policy := NoisePolicy{
		MinDuration: 45 * time.Second,
		Keywords:    []string{"intro", "skit", "applause"},
	}

	cases := []struct {
		name string
		item *Item
		want bool
	}{
		{"short track", &Item{Kind: KindTrack, Title: "Blip", Duration: 20 * time.Second}, true},
		{"keyword match", &Item{Kind: KindTrack, Title: "Intro (Skit)", Duration: 2 * time.Minute}, true},
		{"normal track", &Item{Kind: KindTrack, Title: "Real Song", Duration: 3 * time.Minute}, false},
		{"unknown duration", &Item{Kind: KindTrack, Title: "Mystery", Duration: 0}, false},
		{"album never noise", &Item{Kind: KindAlbum, Title: "Intro"}, false},
	}
	for _, tc := range cases {
		if got := policy.Excluded(tc.item); got != tc.want {
			t.Errorf("%s: Excluded = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestItemHelpers(t *testing.T) {
	item := &Item{Kind: KindTrack, UserRating: 4.5, Moods: []string{"Rating_Inferred"}}
	if !item.Rated() {
		t.Error("Rated should be true")
	}
	if !item.HasMood("Rating_Inferred") {
		t.Error("HasMood should find the tag")
	}
	if item.HasMood("") {
		t.Error("empty tag must not match")
	}
	unrated := &Item{Kind: KindTrack}
	if unrated.Rated() {
		t.Error("zero rating means unrated")
	}
}
