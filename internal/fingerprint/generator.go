package fingerprint

import (
	"context"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/events"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

// Store is the subset of catalog.Store the generator needs.
type Store interface {
	IterateMissingFingerprints(ctx context.Context, fn func(*catalog.Track) error) error
	SetFingerprint(ctx context.Context, id int64, fingerprint string, durationSec int) error
}

// GenProgress reports generator progress as completed/total (spec §4.6).
type GenProgress struct {
	Completed int
	Total     int
	State     string // "running", "completed", "error"
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Store       Store
	Concurrency int // defaults to runtime.NumCPU()
	Progress    *events.Bus[GenProgress]
}

// Generator runs fpcalc over every track in the catalog lacking a
// fingerprint (C6).
type Generator struct {
	store       Store
	concurrency int
	progress    *events.Bus[GenProgress]
}

// NewGenerator creates a Generator from cfg.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Generator{store: cfg.Store, concurrency: concurrency, progress: cfg.Progress}
}

// GenResult summarizes a completed generation run.
type GenResult struct {
	Completed int
	Skipped   int
	Errors    []error
}

func (g *Generator) emit(p GenProgress) {
	if g.progress != nil {
		g.progress.Publish(p)
	}
}

// Run fingerprints every track the catalog reports as missing one. A
// missing fpcalc binary fails the whole run (spec §4.6's "terminal state...
// error if the overall job fails catastrophically, e.g. binary missing");
// per-file failures are logged and the file is skipped, not re-queued.
// Both the catalog-iteration goroutine and the worker pool run under a
// conc.WaitGroup: a panic in either (e.g. a nil-pointer in Generate on
// malformed fpcalc output) is caught rather than crashing the process,
// and surfaces as this method's returned error instead (spec §7: "workers
// never panic the process; they translate to session error state").
func (g *Generator) Run(ctx context.Context) (*GenResult, error) {
	fpcalcPath, err := ResolvePath()
	if err != nil {
		g.emit(GenProgress{State: "error"})
		return nil, err
	}

	type job struct {
		track *catalog.Track
	}
	jobs := make(chan job, g.concurrency*2)

	result := &GenResult{}
	var resultMu sync.Mutex
	var completed int
	var total int

	var collectErr error
	collectWg := conc.NewWaitGroup()
	collectWg.Go(func() {
		collectErr = g.store.IterateMissingFingerprints(ctx, func(t *catalog.Track) error {
			resultMu.Lock()
			total++
			resultMu.Unlock()
			select {
			case jobs <- job{track: t}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		close(jobs)
	})

	wg := conc.NewWaitGroup()
	for i := 0; i < g.concurrency; i++ {
		wg.Go(func() {
			for j := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res, err := Generate(ctx, fpcalcPath, j.track.FilePath)
				if err != nil {
					resultMu.Lock()
					result.Errors = append(result.Errors, err)
					result.Skipped++
					resultMu.Unlock()
					logging.Warn("fingerprint: skipping %s: %v", j.track.FilePath, err)
					continue
				}

				if err := g.store.SetFingerprint(ctx, j.track.ID, res.Fingerprint, res.DurationSec); err != nil {
					resultMu.Lock()
					result.Errors = append(result.Errors, apperr.Wrap(apperr.KindInternal, "fingerprint.Run", err))
					result.Skipped++
					resultMu.Unlock()
					logging.Warn("fingerprint: failed to persist %s: %v", j.track.FilePath, err)
					continue
				}

				resultMu.Lock()
				result.Completed++
				completed++
				c, t := completed, total
				resultMu.Unlock()
				g.emit(GenProgress{Completed: c, Total: t, State: "running"})
			}
		})
	}

	var catcher panics.Catcher
	catcher.Try(wg.Wait)
	catcher.Try(collectWg.Wait)
	if r := catcher.Recovered(); r != nil {
		g.emit(GenProgress{State: "error"})
		return result, apperr.Wrap(apperr.KindInternal, "fingerprint.Run", r.AsError())
	}

	if collectErr != nil && collectErr != context.Canceled {
		return result, apperr.Wrap(apperr.KindInternal, "fingerprint.Run", collectErr)
	}

	g.emit(GenProgress{Completed: result.Completed, Total: total, State: "completed"})
	return result, nil
}
