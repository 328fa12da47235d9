package organizer

import (
	"sync/atomic"
	"time"

	"photosort/internal/timestamp"
)

// Stats accumulates run counters. Fields are atomics so workers update them
// without coordination.
type Stats struct {
	SidecarsIndexed atomic.Int64
	SidecarsSkipped atomic.Int64
	Placed          atomic.Int64
	Failed          atomic.Int64

	FromSidecar  atomic.Int64
	FromEmbedded atomic.Int64
	FromFileTime atomic.Int64
}

func (s *Stats) countSource(src timestamp.Source) {
	switch src {
	case timestamp.SourceSidecar:
		s.FromSidecar.Add(1)
	case timestamp.SourceEmbedded:
		s.FromEmbedded.Add(1)
	case timestamp.SourceFileTime:
		s.FromFileTime.Add(1)
	}
}

// Summary is the immutable snapshot reported at the end of a run.
type Summary struct {
	SidecarsIndexed int64
	SidecarsSkipped int64
	Placed          int64
	Failed          int64
	FromSidecar     int64
	FromEmbedded    int64
	FromFileTime    int64
	Elapsed         time.Duration
}

// Summarize snapshots the counters.
func (s *Stats) Summarize(elapsed time.Duration) Summary {
	return Summary{
		SidecarsIndexed: s.SidecarsIndexed.Load(),
		SidecarsSkipped: s.SidecarsSkipped.Load(),
		Placed:          s.Placed.Load(),
		Failed:          s.Failed.Load(),
		FromSidecar:     s.FromSidecar.Load(),
		FromEmbedded:    s.FromEmbedded.Load(),
		FromFileTime:    s.FromFileTime.Load(),
		Elapsed:         elapsed,
	}
}
