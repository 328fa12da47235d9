// Package catalog persists an optional manifest of placement decisions in
// SQLite. The organize run appends one row per processed file; the core
// pipeline never reads the catalog back, so disabling it changes nothing
// about where files land.
package catalog
