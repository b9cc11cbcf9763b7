// Package domain holds the pure core of the voter-registration lookup: the
// upstream record shapes, their normalization into a single display result,
// and the comparison of results from the two registries.
//
// Nothing in this package performs I/O, logs, or reads the clock. Every
// function is safe for concurrent use.
package domain
