package catalog

import (
	"sort"
	"time"
)

// Kind identifies the hierarchy level of a catalog item.
type Kind string

const (
	KindArtist Kind = "artist"
	KindAlbum  Kind = "album"
	KindTrack  Kind = "track"
)

// PlexType returns the numeric libtype Plex uses for this kind in
// section listing requests.
func (k Kind) PlexType() int {
	switch k {
	case KindArtist:
		return 8
	case KindAlbum:
		return 9
	case KindTrack:
		return 10
	}
	return 0
}

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindArtist, KindAlbum, KindTrack:
		return true
	}
	return false
}

// Item is one artist, album, or track as read from the external
// catalog. Ratings use the star scale (0.0-5.0); zero means unrated,
// matching how Plex reports absence. CriticRating stays on the 0-10
// scale Plex delivers it in.
type Item struct {
	ID               string
	Kind             Kind
	Title            string
	ParentID         string // track -> album, album -> artist
	ParentTitle      string
	GrandparentID    string // track -> artist
	GrandparentTitle string
	Duration         time.Duration // tracks only
	UserRating       float64       // stars, 0 = unrated
	CriticRating     float64       // albums only, 0-10, 0 = absent
	Moods            []string

	// OrderKey is the normalized composite ordering key used for
	// deterministic phase traversal and checkpointing. Populated by
	// NewLibrary.
	OrderKey string
}

// Rated reports whether the item carries a current rating.
func (i *Item) Rated() bool { return i.UserRating > 0 }

// HasCritic reports whether a critic rating is present.
func (i *Item) HasCritic() bool { return i.CriticRating > 0 }

// HasMood reports whether the item carries the given mood tag.
func (i *Item) HasMood(tag string) bool {
	if tag == "" {
		return false
	}
	for _, m := range i.Moods {
		if m == tag {
			return true
		}
	}
	return false
}

// ArtistTitle returns the owning artist's title regardless of level.
func (i *Item) ArtistTitle() string {
	switch i.Kind {
	case KindArtist:
		return i.Title
	case KindAlbum:
		return i.ParentTitle
	default:
		return i.GrandparentTitle
	}
}

// Library is one full catalog snapshot plus lookup indexes. Stamp is
// the stable per-library identity (the section UUID on Plex).
type Library struct {
	Name  string
	Stamp string

	Artists []*Item
	Albums  []*Item
	Tracks  []*Item

	byID     map[string]*Item
	children map[string][]*Item
}

// NewLibrary indexes the provided items, computes ordering keys, and
// sorts each level into deterministic traversal order.
func NewLibrary(name, stamp string, items []*Item) *Library {
	lib := &Library{
		Name:     name,
		Stamp:    stamp,
		byID:     make(map[string]*Item, len(items)),
		children: make(map[string][]*Item),
	}
	for _, item := range items {
		lib.byID[item.ID] = item
		switch item.Kind {
		case KindArtist:
			lib.Artists = append(lib.Artists, item)
		case KindAlbum:
			lib.Albums = append(lib.Albums, item)
		case KindTrack:
			lib.Tracks = append(lib.Tracks, item)
		}
		if item.ParentID != "" {
			lib.children[item.ParentID] = append(lib.children[item.ParentID], item)
		}
	}
	for _, item := range items {
		item.OrderKey = lib.orderKey(item)
	}
	sortByOrderKey(lib.Artists)
	sortByOrderKey(lib.Albums)
	sortByOrderKey(lib.Tracks)
	for _, kids := range lib.children {
		sortByOrderKey(kids)
	}
	return lib
}

// orderKey builds the composite sort key: artists order by their own
// folded title, albums by artist then title, tracks by artist, album,
// then title. The raw ID is appended so keys stay unique even when two
// items normalize to the same text.
func (l *Library) orderKey(item *Item) string {
	const sep = "\x1f"
	switch item.Kind {
	case KindArtist:
		return FoldKey(item.Title) + sep + item.ID
	case KindAlbum:
		return FoldKey(item.ParentTitle) + sep + FoldKey(item.Title) + sep + item.ID
	default:
		return FoldKey(item.GrandparentTitle) + sep + FoldKey(item.ParentTitle) + sep + FoldKey(item.Title) + sep + item.ID
	}
}

func sortByOrderKey(items []*Item) {
	sort.Slice(items, func(a, b int) bool { return items[a].OrderKey < items[b].OrderKey })
}

// Item returns the item with the given identifier, or nil.
func (l *Library) Item(id string) *Item { return l.byID[id] }

// ChildrenOf returns the direct children of the item with the given
// identifier (albums of an artist, tracks of an album), already in
// traversal order.
func (l *Library) ChildrenOf(id string) []*Item { return l.children[id] }

// Parent returns the direct parent of the item, or nil when the parent
// is unknown or absent from the snapshot.
func (l *Library) Parent(item *Item) *Item {
	if item == nil || item.ParentID == "" {
		return nil
	}
	return l.byID[item.ParentID]
}

// Items returns every level for the given kind.
func (l *Library) Items(kind Kind) []*Item {
	switch kind {
	case KindArtist:
		return l.Artists
	case KindAlbum:
		return l.Albums
	case KindTrack:
		return l.Tracks
	}
	return nil
}

// All returns every item in traversal order, artists first, then
// albums, then tracks.
func (l *Library) All() []*Item {
	all := make([]*Item, 0, l.Size())
	all = append(all, l.Artists...)
	all = append(all, l.Albums...)
	all = append(all, l.Tracks...)
	return all
}

// Size is the total item count across all three levels.
func (l *Library) Size() int {
	return len(l.Artists) + len(l.Albums) + len(l.Tracks)
}
