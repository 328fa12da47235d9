// Package placement owns the collision-safe end of the pipeline: deriving
// year/month/extension destination directories, claiming a unique name for
// each file through a single shared reservation set, and performing the
// verified copy plus timestamp stamping.
//
// The one invariant that matters lives in Reservations.Claim: checking a
// candidate name and claiming it is indivisible, so no two workers in the
// process can ever settle on the same destination path. Collision freedom is
// only guaranteed among this process's workers, not against outside writers.
package placement
