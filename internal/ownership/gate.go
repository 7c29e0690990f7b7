package ownership

import "math"

// Action is the gate's verdict for one proposed write.
type Action int

const (
	// ActionWrite allows the proposed value through to the external
	// writer.
	ActionWrite Action = iota
	// ActionSuppress drops the write because the proposal sits within
	// the drift tolerance of what the engine already wrote.
	ActionSuppress
	// ActionBlock forbids the write because the item belongs to a
	// human.
	ActionBlock
)

// Outcome carries the gate verdict plus the classification the shadow
// state should record afterwards. Takeover is set when a previously
// inferred item was found manually overridden this run.
type Outcome struct {
	Action   Action
	Class    Class
	Takeover bool
}

// Evaluate runs the classification procedure for one item and decides
// whether proposed may be written. current is the live external rating
// (0 = unrated), rec the shadow record (nil when never touched), eps
// the drift tolerance for this run.
//
// The gate must run before the external writer is invoked: suppression
// is the primary lever keeping write volume off the store.
func Evaluate(current, proposed float64, rec *Record, eps float64) Outcome {
	// A manual verdict never relaxes.
	if rec != nil && rec.Class == ClassManual {
		return Outcome{Action: ActionBlock, Class: ClassManual}
	}

	// No record of our own writing: a live rating must be a human's.
	if !rec.HasInferred() {
		if current > 0 {
			return Outcome{Action: ActionBlock, Class: ClassManual}
		}
		return Outcome{Action: ActionWrite, Class: ClassInferred}
	}

	// We wrote this item before. Any drift beyond tolerance means a
	// human changed it (including clearing it), permanently.
	if math.Abs(current-rec.Inferred) > eps {
		return Outcome{Action: ActionBlock, Class: ClassManual, Takeover: true}
	}

	if math.Abs(proposed-rec.Inferred) <= eps {
		return Outcome{Action: ActionSuppress, Class: ClassInferred}
	}
	return Outcome{Action: ActionWrite, Class: ClassInferred}
}
