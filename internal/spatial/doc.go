// Package spatial implements the corridor filter: an exact distance test
// from a point to a line segment, and a coarse grid-based selection of the
// shards that can hold points inside the corridor.
package spatial
