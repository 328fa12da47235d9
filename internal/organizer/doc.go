// Package organizer orchestrates a full photosort run.
//
// A run is two phases separated by a hard barrier. Phase one walks the
// source tree and builds the sidecar metadata index with a parser pool;
// phase two fans candidate files out to a placement pool where each worker
// resolves a timestamp and hands the file to the placement engine. The
// destination root is guarded by an advisory file lock so concurrent
// photosort processes cannot interleave on one tree. Per-file failures are
// logged and counted; only preflight failures abort the run.
package organizer
