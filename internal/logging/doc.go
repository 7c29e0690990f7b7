// Package logging constructs the slog logger used across plexrate and
// exports thin attribute helpers so call sites stay uniform. Console
// output is the default; JSON is available for scripted runs.
package logging
