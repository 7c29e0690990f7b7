// Package plexlib is the catalog reader/writer against the Plex HTTP
// API: section lookup, bulk item listing, rating writes, and marker
// mood tags. The engine never talks to Plex directly; it consumes the
// reader/writer contracts this package satisfies.
//
// Ratings cross the wire on Plex's 0-10 scale and are converted to the
// engine's star scale (0-5) at this boundary.
package plexlib
