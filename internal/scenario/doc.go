// Package scenario resolves scenario identifiers to container images.
//
// Resolution is total: an identifier without a mapping falls back to the
// default image instead of failing. A fixed subset of scenarios is marked
// privileged; those containers get the engine control socket mounted.
//
// Catalog values are immutable. Store swaps in a new Catalog when the
// configuration file changes, so a reload never mutates a table that an
// in-flight launch is reading.
package scenario
