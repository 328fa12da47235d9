// Package sidecar builds the in-memory index of capture times recorded by
// the export's JSON sidecar files. The index is populated once, before any
// placement work starts, and read-only afterwards. Malformed sidecars are
// skipped by the caller; a bad file never aborts the run.
package sidecar
