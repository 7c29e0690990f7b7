// Package main hosts the plexrate CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into
// engine operations: inference runs, state verification and cleanup,
// bulk CSV import/export, rankings and coverage reports, and
// configuration scaffolding. It centralizes configuration resolution,
// Plex client construction, state-store locking, and signal handling
// so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the
// internal packages first, then surface it through dedicated commands
// or flags here.
package main
