// Package inference holds the rating math: the library-wide prior, the
// bottom-up Bayesian aggregation of child ratings into parents, the
// top-down gravity-weighted inheritance, and the duplicate-track (twin)
// resolver.
//
// All functions here are pure and operate on the star scale (0.0-5.0).
// The ownership gate and the phase runner decide what, if anything, is
// written back to the external store.
package inference
