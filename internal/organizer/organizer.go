package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"photosort/internal/catalog"
	"photosort/internal/logging"
	"photosort/internal/placement"
	"photosort/internal/scan"
	"photosort/internal/sidecar"
	"photosort/internal/timestamp"
)

// ErrStartup marks fatal preflight failures: everything else in a run is a
// contained per-file error, but these terminate before any work begins.
var ErrStartup = errors.New("startup error")

// lockFileName is created inside the destination root while a run holds it.
const lockFileName = ".photosort.lock"

// Options configures one organize run.
type Options struct {
	// Source is the directory to traverse recursively.
	Source string
	// Dest is the destination root receiving the year/month/ext tree.
	Dest string
	// Workers sizes the pool; values below 1 mean one worker per CPU.
	Workers int
	// SidecarSuffix marks metadata files during traversal.
	SidecarSuffix string
	// ExcludedExtensions are never placed.
	ExcludedExtensions map[string]struct{}
	// MaxCollisionProbes caps the per-file collision search.
	MaxCollisionProbes int
	// RunID labels log records and catalog rows for this run.
	RunID string
	// Catalog, when non-nil, receives one row per processed file.
	Catalog *catalog.Store
	// Logger is the base logger; nil means silent.
	Logger *slog.Logger
}

// Organizer drives a full run: sidecar index build, then concurrent
// placement of every candidate file.
type Organizer struct {
	opts    Options
	workers int
	logger  *slog.Logger
}

// New validates options and constructs an organizer.
func New(opts Options) (*Organizer, error) {
	if opts.Source == "" || opts.Dest == "" {
		return nil, fmt.Errorf("%w: source and destination directories are required", ErrStartup)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := logging.NewComponentLogger(opts.Logger, "organizer")
	if opts.RunID != "" {
		logger = logger.With(logging.String(logging.FieldRunID, opts.RunID))
	}
	return &Organizer{opts: opts, workers: workers, logger: logger}, nil
}

// Run executes the organize pipeline and reports aggregate stats. Only
// preflight failures return an error; per-file failures are logged, counted,
// and recorded in the catalog when one is configured.
func (o *Organizer) Run(ctx context.Context) (Summary, error) {
	started := time.Now()

	if err := o.preflight(); err != nil {
		return Summary{}, err
	}

	lock := flock.New(filepath.Join(o.opts.Dest, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("%w: acquire destination lock: %v", ErrStartup, err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w: another photosort run holds %s", ErrStartup, lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			o.logger.Warn("failed to release destination lock", logging.Error(err))
		}
	}()

	stats := &Stats{}

	// Phase 1 walks the whole tree once: sidecar paths stream straight into
	// the parser pool while candidate paths are held for phase 2.
	index, candidates, err := o.buildIndex(stats)
	if err != nil {
		return Summary{}, err
	}
	// The pool has drained and joined: the index is read-only from here on.
	o.logger.Info("sidecar index built",
		logging.Int("entries", index.Len()),
		logging.Int("candidates", len(candidates)),
	)

	o.placeAll(ctx, index, candidates, stats)

	summary := stats.Summarize(time.Since(started))
	o.logger.Info("run complete",
		logging.Int64("placed", summary.Placed),
		logging.Int64("failed", summary.Failed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

func (o *Organizer) preflight() error {
	for _, dir := range []string{o.opts.Source, o.opts.Dest} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: directory does not exist: %s", ErrStartup, dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: not a directory: %s", ErrStartup, dir)
		}
	}
	return nil
}

// buildIndex runs phase 1. It returns only after every sidecar parse has
// finished, so the returned index needs no further synchronization.
func (o *Organizer) buildIndex(stats *Stats) (*sidecar.Index, []string, error) {
	index := sidecar.NewIndex()

	jobs := make(chan string, o.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				entry, err := sidecar.ParseFile(path)
				if err != nil {
					stats.SidecarsSkipped.Add(1)
					o.logger.Warn("skipping sidecar", logging.Path(path), logging.Error(err))
					continue
				}
				index.Insert(entry)
				stats.SidecarsIndexed.Add(1)
			}
		}()
	}

	var candidates []string
	walkErr := scan.Walk(o.opts.Source, scan.Options{
		SidecarSuffix: o.opts.SidecarSuffix,
		Excluded:      o.opts.ExcludedExtensions,
	}, o.logger, func(e scan.Entry) {
		switch e.Kind {
		case scan.KindSidecar:
			jobs <- e.Path
		case scan.KindCandidate:
			candidates = append(candidates, e.Path)
		}
	})
	close(jobs)
	wg.Wait()

	if walkErr != nil {
		return nil, nil, fmt.Errorf("%w: walk source tree: %v", ErrStartup, walkErr)
	}
	return index, candidates, nil
}

// placeAll runs phase 2: a bounded pool resolving and placing every
// candidate. Workers share the resolver, the engine, and through the engine
// the one reservation set; nothing else crosses task boundaries.
func (o *Organizer) placeAll(ctx context.Context, index *sidecar.Index, candidates []string, stats *Stats) {
	resolver := timestamp.NewResolver(index, o.opts.Logger)
	engine := placement.NewEngine(o.opts.Dest, placement.NewReservations(), o.opts.MaxCollisionProbes, o.opts.Logger)

	jobs := make(chan string, o.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				o.processFile(ctx, resolver, engine, path, stats)
			}
		}()
	}
	for _, path := range candidates {
		jobs <- path
	}
	close(jobs)
	wg.Wait()
}

func (o *Organizer) processFile(ctx context.Context, resolver *timestamp.Resolver, engine *placement.Engine, path string, stats *Stats) {
	resolved, err := resolver.Resolve(path)
	if err != nil {
		stats.Failed.Add(1)
		o.logger.Error("cannot resolve timestamp", logging.Path(path), logging.Error(err))
		o.record(ctx, catalog.Placement{
			RunID:      o.opts.RunID,
			SourcePath: path,
			Source:     timestamp.SourceFileTime.String(),
			Status:     catalog.StatusFailed,
			Error:      err.Error(),
		})
		return
	}
	stats.countSource(resolved.Source)

	result, err := engine.Place(path, resolved)
	if err != nil {
		stats.Failed.Add(1)
		o.logger.Error("placement failed", logging.Path(path), logging.Error(err))
		o.record(ctx, catalog.Placement{
			RunID:      o.opts.RunID,
			SourcePath: path,
			Source:     resolved.Source.String(),
			ResolvedAt: resolved.Time,
			Status:     catalog.StatusFailed,
			Error:      err.Error(),
		})
		return
	}

	stats.Placed.Add(1)
	o.record(ctx, catalog.Placement{
		RunID:      o.opts.RunID,
		SourcePath: path,
		DestPath:   result.Path,
		Source:     resolved.Source.String(),
		ResolvedAt: resolved.Time,
		Status:     catalog.StatusPlaced,
	})
}

func (o *Organizer) record(ctx context.Context, p catalog.Placement) {
	if o.opts.Catalog == nil {
		return
	}
	if err := o.opts.Catalog.Record(ctx, p); err != nil {
		o.logger.Warn("catalog write failed", logging.Path(p.SourcePath), logging.Error(err))
	}
}
