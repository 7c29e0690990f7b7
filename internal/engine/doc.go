// Package engine sequences the rating inference passes over a catalog
// snapshot: bottom-up aggregation, top-down inheritance, and twin
// resolution, each checkpointed and paced against the external store.
//
// The engine holds the consistency-critical loop: for every item it
// computes a candidate rating, runs the ownership gate, performs the
// external write (or suppresses it), records the outcome in the shadow
// state, and only then advances the phase checkpoint. Interrupts are
// honored exclusively at these commit boundaries, so a crash or cancel
// can cause at worst one redundant recomputation, never an
// inconsistent shadow state.
package engine
