// Package scan walks the source tree and classifies what it finds: sidecar
// metadata files, placement candidates, and byproducts to ignore. It is the
// traversal collaborator for the organize run; it never touches file
// contents.
package scan

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"photosort/internal/logging"
)

// Kind classifies a walked file.
type Kind int

const (
	// KindSidecar is a metadata file feeding the index build.
	KindSidecar Kind = iota
	// KindCandidate is a regular file eligible for placement.
	KindCandidate
)

// Entry is one classified file yielded by Walk.
type Entry struct {
	Path string
	Kind Kind
}

// Options controls classification during the walk.
type Options struct {
	// SidecarSuffix marks metadata files (lower-case, with leading dot).
	SidecarSuffix string
	// Excluded extensions (lower-case, with leading dot) are yielded to
	// neither stream.
	Excluded map[string]struct{}
}

// Walk traverses root recursively and calls fn for every classified regular
// file. Unreadable entries are logged and skipped; only a failure to read
// the root itself is returned.
func Walk(root string, opts Options, logger *slog.Logger, fn func(Entry)) error {
	logger = logging.NewComponentLogger(logger, "scan")

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable entry", logging.Path(path), logging.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		if strings.HasSuffix(strings.ToLower(name), opts.SidecarSuffix) {
			fn(Entry{Path: path, Kind: KindSidecar})
			return nil
		}
		ext := strings.ToLower(filepath.Ext(name))
		if _, skip := opts.Excluded[ext]; skip {
			return nil
		}
		fn(Entry{Path: path, Kind: KindCandidate})
		return nil
	})
}
