package placement

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photosort/internal/fileutil"
	"photosort/internal/logging"
	"photosort/internal/timestamp"
)

// monthNames buckets destinations by full English month name. The table is
// fixed; localized names would change the on-disk layout between runs.
var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

func monthName(month int) string {
	if month < 1 || month > 12 {
		// Unreachable for a valid calendar instant, kept so a bad value
		// buckets visibly instead of panicking.
		return "Unknown"
	}
	return monthNames[month-1]
}

// Result describes a completed placement.
type Result struct {
	// Path is the final destination the file was copied to.
	Path string
	// Probes is how many candidate names were tried before one was claimed.
	Probes int
}

// Engine copies files into the <root>/<year>/<month>/<ext> tree, claiming a
// collision-free destination name through the shared reservation set before
// any bytes move.
type Engine struct {
	root       string
	res        *Reservations
	probeLimit int
	logger     *slog.Logger
}

// NewEngine builds a placement engine rooted at the destination directory.
// probeLimit bounds the collision search per file; values below 1 fall back
// to a single probe of the unsuffixed name.
func NewEngine(root string, res *Reservations, probeLimit int, logger *slog.Logger) *Engine {
	if probeLimit < 1 {
		probeLimit = 1
	}
	return &Engine{
		root:       root,
		res:        res,
		probeLimit: probeLimit,
		logger:     logging.NewComponentLogger(logger, "placement"),
	}
}

// fileExt returns the extension of base. A name whose only dot is the
// leading one (a hidden file such as ".nomedia") counts as extensionless.
func fileExt(base string) string {
	ext := filepath.Ext(base)
	if ext == base {
		return ""
	}
	return ext
}

// DestDir derives the destination directory for a resolved instant and the
// source file's extension: <root>/<year>/<MonthName>/<lowercased-ext>. Files
// without an extension bucket under no_ext.
func (e *Engine) DestDir(ts time.Time, srcPath string) string {
	bucket := "no_ext"
	if ext := fileExt(filepath.Base(srcPath)); ext != "" {
		bucket = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	return filepath.Join(
		e.root,
		fmt.Sprintf("%04d", ts.Year()),
		monthName(int(ts.Month())),
		bucket,
	)
}

// Place moves one file into the tree: derive the directory, claim a free
// name, copy the bytes, stamp both file times with the resolved instant.
// A failure at any step abandons this file only.
func (e *Engine) Place(srcPath string, resolved timestamp.Resolved) (Result, error) {
	dir := e.DestDir(resolved.Time, srcPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create destination directory: %w", err)
	}

	dest, probes, err := e.claimName(dir, filepath.Base(srcPath))
	if err != nil {
		return Result{}, err
	}

	if err := fileutil.CopyFileVerified(srcPath, dest); err != nil {
		// The claim stays: a slow concurrent copy to the same name is
		// indistinguishable from a failed one, so the name is burned.
		return Result{}, fmt.Errorf("copy to %s: %w", dest, err)
	}

	stamp := time.Unix(resolved.Time.Unix(), 0)
	if err := os.Chtimes(dest, stamp, stamp); err != nil {
		return Result{}, fmt.Errorf("set file times on %s: %w", dest, err)
	}

	e.logger.Debug("placed file",
		logging.Path(srcPath),
		logging.String("dest", dest),
		logging.String("source", resolved.Source.String()),
		logging.Int("probes", probes),
	)
	return Result{Path: dest, Probes: probes}, nil
}

// claimName finds the first destination name that is neither reserved by a
// concurrent worker nor present on disk: base, then stem_1.ext, stem_2.ext,
// and so on. Each candidate's check-and-claim is a single atomic step; the
// search as a whole interleaves freely with other workers.
func (e *Engine) claimName(dir, base string) (string, int, error) {
	candidate := filepath.Join(dir, base)
	if e.res.Claim(candidate) {
		return candidate, 1, nil
	}

	ext := fileExt(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; n < e.probeLimit; n++ {
		name := fmt.Sprintf("%s_%d%s", stem, n, ext)
		candidate = filepath.Join(dir, name)
		if e.res.Claim(candidate) {
			return candidate, n + 1, nil
		}
	}
	return "", e.probeLimit, fmt.Errorf("no free destination name for %s in %s after %d probes", base, dir, e.probeLimit)
}
