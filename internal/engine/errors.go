package engine

import "errors"

var (
	// ErrInterrupted reports that a run stopped at a commit boundary
	// with its checkpoint intact; a later invocation resumes from it.
	ErrInterrupted = errors.New("run interrupted")

	// ErrIdentityMismatch reports that the shadow state is stamped for
	// a different library than the one the reader returned. Proceeding
	// requires explicit confirmation.
	ErrIdentityMismatch = errors.New("library identity mismatch")

	// ErrMarkerDisabled reports that reconstruction was requested with
	// no marker tag configured, leaving nothing to scan for.
	ErrMarkerDisabled = errors.New("marker tag not configured")
)
