// Package config loads, normalizes, and validates the TOML
// configuration for plexrate. Loading follows a fixed precedence:
// explicit --config path, then ~/.config/plexrate/config.toml, then a
// plexrate.toml in the working directory. Missing files fall back to
// defaults; invalid values fail fast before any phase starts.
package config
