// Package ownership implements the rating ownership model: the
// per-item classification that separates human-entered ratings from
// engine-authored ones, and the dynamic-precision gate that decides
// whether a freshly computed rating may be written.
//
// Plex exposes no authoritative modified-timestamp, so ownership is
// re-derived every run by comparing the live rating against the last
// value the engine recorded for that item. Once an item is classified
// manual it stays manual; only an explicit bulk-import override
// releases it.
package ownership
