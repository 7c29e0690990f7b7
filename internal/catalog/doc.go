// Package catalog provides the typed in-memory model of a Plex music
// library: artist, album, and track items with their rating fields,
// normalized ordering keys, and the noise-exclusion policy that decides
// which tracks count toward aggregation.
//
// Items reference their parents by identifier; they do not own them. A
// Library wraps one full snapshot with index maps so parent and child
// lookups stay O(1) during a phase pass.
package catalog
