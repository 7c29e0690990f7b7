package plexlib

import (
	"time"

	"github.com/CWuestefeld/plex-rating-utils/internal/catalog"
)

// Section identifies one Plex library section. UUID is the stable
// per-library identity stamp the shadow state is bound to.
type Section struct {
	Key   string
	Title string
	UUID  string
}

type sectionsResponse struct {
	MediaContainer struct {
		Directory []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
			UUID  string `json:"uuid"`
			Type  string `json:"type"`
		} `json:"Directory"`
	} `json:"MediaContainer"`
}

type itemsResponse struct {
	MediaContainer struct {
		Metadata []metadataItem `json:"Metadata"`
	} `json:"MediaContainer"`
}

type tagRef struct {
	Tag string `json:"tag"`
}

type metadataItem struct {
	RatingKey            string  `json:"ratingKey"`
	Title                string  `json:"title"`
	ParentRatingKey      string  `json:"parentRatingKey"`
	ParentTitle          string  `json:"parentTitle"`
	GrandparentRatingKey string  `json:"grandparentRatingKey"`
	GrandparentTitle     string  `json:"grandparentTitle"`
	UserRating           float64 `json:"userRating"`
	Rating               float64 `json:"rating"`
	Duration             int64   `json:"duration"` // milliseconds
	Mood                 []tagRef `json:"Mood"`
}

func (m metadataItem) toItem(kind catalog.Kind) *catalog.Item {
	item := &catalog.Item{
		ID:               m.RatingKey,
		Kind:             kind,
		Title:            m.Title,
		ParentID:         m.ParentRatingKey,
		ParentTitle:      m.ParentTitle,
		GrandparentID:    m.GrandparentRatingKey,
		GrandparentTitle: m.GrandparentTitle,
		Duration:         time.Duration(m.Duration) * time.Millisecond,
		UserRating:       StarsFromWire(m.UserRating),
		CriticRating:     m.Rating,
	}
	for _, mood := range m.Mood {
		if mood.Tag != "" {
			item.Moods = append(item.Moods, mood.Tag)
		}
	}
	return item
}

// StarsFromWire converts Plex's 0-10 rating to the star scale.
func StarsFromWire(v float64) float64 { return v / 2 }

// WireFromStars converts a star rating to Plex's 0-10 scale.
func WireFromStars(v float64) float64 { return v * 2 }
