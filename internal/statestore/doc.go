// Package statestore persists the engine's shadow state in SQLite: the
// per-library identity stamp, one ownership row per item the engine has
// touched, and one checkpoint row per phase.
//
// The store is the only state that survives across runs. It is read in
// full at phase start and written incrementally as items commit. A file
// lock around the state directory keeps it to one runner instance at a
// time.
package statestore
