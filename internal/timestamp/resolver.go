package timestamp

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"photosort/internal/logging"
	"photosort/internal/sidecar"
)

// Source identifies which tier of the fallback chain produced a timestamp.
type Source int

const (
	// SourceSidecar means the export's sidecar metadata named this file.
	SourceSidecar Source = iota
	// SourceEmbedded means the capture time came from the file's own EXIF data.
	SourceEmbedded
	// SourceFileTime means the filesystem creation or modification time was used.
	SourceFileTime
)

func (s Source) String() string {
	switch s {
	case SourceSidecar:
		return "sidecar"
	case SourceEmbedded:
		return "exif"
	case SourceFileTime:
		return "filetime"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Resolved is the single authoritative UTC instant chosen for a file. The
// source tag is diagnostic only; nothing downstream branches on it.
type Resolved struct {
	Time   time.Time
	Source Source
}

var errNoSidecarEntry = errors.New("no sidecar entry")

// Resolver walks the three-tier fallback chain for each file: sidecar index,
// embedded capture tag, filesystem time. Tiers are tried strictly in order
// and the first success wins.
type Resolver struct {
	index  *sidecar.Index
	logger *slog.Logger
}

// NewResolver builds a resolver over a completed sidecar index.
func NewResolver(index *sidecar.Index, logger *slog.Logger) *Resolver {
	return &Resolver{
		index:  index,
		logger: logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve produces the timestamp for path. It only fails when the final
// filesystem tier cannot stat the file; every earlier failure falls through
// to the next tier.
func (r *Resolver) Resolve(path string) (Resolved, error) {
	tiers := []struct {
		source Source
		fn     func(string) (time.Time, error)
	}{
		{SourceSidecar, r.fromSidecar},
		{SourceEmbedded, captureTimeFromEXIF},
	}

	for _, tier := range tiers {
		ts, err := tier.fn(path)
		if err == nil {
			return Resolved{Time: ts, Source: tier.source}, nil
		}
		if tier.source == SourceEmbedded {
			r.logger.Warn("embedded capture tag unavailable", logging.Path(path), logging.Error(err))
		}
	}

	ts, err := fileTime(path)
	if err != nil {
		return Resolved{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return Resolved{Time: ts, Source: SourceFileTime}, nil
}

func (r *Resolver) fromSidecar(path string) (time.Time, error) {
	// Exact base-name match only; the export writes the original filename
	// into the sidecar's title field verbatim.
	if ts, ok := r.index.Lookup(filepath.Base(path)); ok {
		return ts, nil
	}
	return time.Time{}, errNoSidecarEntry
}

// fileTime prefers the file's creation (birth) time and falls back to the
// modification time on filesystems that do not record one.
func fileTime(path string) (time.Time, error) {
	if ts, ok := birthTime(path); ok {
		return ts.UTC(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime().UTC(), nil
}
