package ownership

import "github.com/CWuestefeld/plex-rating-utils/internal/catalog"

// Class is the derived ownership classification of one item's rating.
type Class string

const (
	// ClassNeverTouched marks items the engine has never written and
	// that carry no human rating.
	ClassNeverTouched Class = "never-touched"
	// ClassInferred marks items whose current rating was authored by
	// the engine.
	ClassInferred Class = "inferred"
	// ClassManual marks items a human rated. Manual is sticky: the
	// engine never writes these and never reclassifies them back.
	ClassManual Class = "manual"
)

// Valid reports whether c is a known classification.
func (c Class) Valid() bool {
	switch c {
	case ClassNeverTouched, ClassInferred, ClassManual:
		return true
	}
	return false
}

// Record is one shadow-state row: the last inferred value the engine
// wrote for an item (zero when never written) plus its classification
// and optional twin-group tag.
type Record struct {
	ItemID    string
	Kind      catalog.Kind
	Inferred  float64 // stars; 0 = never written
	Class     Class
	TwinGroup string
}

// HasInferred reports whether the engine ever recorded a write for
// this item.
func (r *Record) HasInferred() bool { return r != nil && r.Inferred > 0 }
