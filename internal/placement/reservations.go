package placement

import (
	"os"
	"sync"
)

// Reservations is the process-wide set of claimed destination paths. It is
// constructed once at startup and shared by reference with every placement
// worker; claims are permanent for the life of the run and are never rolled
// back, even when the copy that follows fails.
type Reservations struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewReservations returns an empty reservation set.
func NewReservations() *Reservations {
	return &Reservations{claimed: make(map[string]struct{})}
}

// Claim atomically checks that path is neither reserved by another worker
// nor already present on disk, and reserves it. The existence probe happens
// under the same lock hold as the insert; splitting them would reopen the
// check-to-use race this set exists to close.
func (r *Reservations) Claim(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.claimed[path]; taken {
		return false
	}
	if _, err := os.Lstat(path); err == nil {
		return false
	}
	r.claimed[path] = struct{}{}
	return true
}

// Reserved reports whether path has been claimed during this run.
func (r *Reservations) Reserved(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, taken := r.claimed[path]
	return taken
}

// Len reports the number of claims held.
func (r *Reservations) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.claimed)
}
