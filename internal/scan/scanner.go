// Package scan implements the directory scanner (C3): recursive audio-file
// discovery, deduped against the catalog, with progress events and
// cooperative cancellation.
package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/fhinkel/music-janitor-core/internal/apperr"
	"github.com/fhinkel/music-janitor-core/internal/catalog"
	"github.com/fhinkel/music-janitor-core/internal/events"
	"github.com/fhinkel/music-janitor-core/internal/extract"
	"github.com/fhinkel/music-janitor-core/internal/logging"
)

// DefaultExtensions are the audio extensions recognized out of the box;
// Profile.EnabledFileTypes (C9) narrows or extends this set.
var DefaultExtensions = []string{
	".mp3", ".flac", ".m4a", ".aac", ".ogg", ".opus",
	".wav", ".aiff", ".aif", ".wma", ".ape", ".wv", ".mpc",
}

// Stage is the phase a scan is currently in, one of the values spec §4.3
// lists for progress events.
type Stage string

const (
	StageScanning    Stage = "scanning"
	StageReadingTags Stage = "reading_tags"
	StageSaving      Stage = "saving"
)

// Progress is emitted to subscribers as a scan proceeds (spec §4.3).
type Progress struct {
	CurrentDirectory     string
	CurrentFile          string
	FilesFound           int
	FilesProcessed       int
	TotalDirectories     int
	DirectoriesProcessed int
	Stage                Stage
}

// Result summarizes a completed scan.
type Result struct {
	FilesDiscovered int
	FilesSkipped    int
	Errors          []error
}

// Store is the subset of catalog.Store the scanner needs.
type Store interface {
	AllPaths(ctx context.Context) (map[string]bool, error)
	Insert(ctx context.Context, t *catalog.Track) (int64, error)
}

// Config configures a Scanner.
type Config struct {
	Store       Store
	Extensions  []string // defaults to DefaultExtensions when empty
	Concurrency int      // defaults to 4
	Progress    *events.Bus[Progress]
	ShowBar     bool // render a terminal progress bar; off unless set
}

// Scanner discovers audio files under one or more roots.
type Scanner struct {
	store       Store
	extensions  map[string]bool
	concurrency int
	progress    *events.Bus[Progress]
	showBar     bool
}

// New creates a Scanner from cfg.
func New(cfg *Config) *Scanner {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extMap := make(map[string]bool, len(exts))
	for _, e := range exts {
		extMap[strings.ToLower(e)] = true
	}
	return &Scanner{
		store:       cfg.Store,
		extensions:  extMap,
		concurrency: concurrency,
		progress:    cfg.Progress,
		showBar:     cfg.ShowBar,
	}
}

func (s *Scanner) isAudioFile(path string) bool {
	return s.extensions[strings.ToLower(filepath.Ext(path))]
}

func (s *Scanner) emit(p Progress) {
	if s.progress != nil {
		s.progress.Publish(p)
	}
}

// Scan walks each root recursively, skips paths already catalogued, and
// extracts + inserts the rest. Cancellation is checked between files
// (spec §4.3: "cooperative cancellation checked between files").
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Result, error) {
	result := &Result{}

	existing, err := s.store.AllPaths(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "scan.Scan", err)
	}
	var existingMu sync.RWMutex

	type candidate struct{ dir, path string }
	paths := make(chan candidate, 128)

	var filesFound, filesProcessed, filesNew, filesSkipped int
	var countersMu sync.Mutex

	var bar *progressbar.ProgressBar
	if s.showBar {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	var wg sync.WaitGroup
	var resultMu sync.Mutex

	worker := func() {
		defer wg.Done()
		for c := range paths {
			select {
			case <-ctx.Done():
				return
			default:
			}

			s.emit(Progress{CurrentDirectory: c.dir, CurrentFile: c.path, Stage: StageReadingTags})

			track, err := extract.Extract(c.path)
			countersMu.Lock()
			filesProcessed++
			processed := filesProcessed
			countersMu.Unlock()

			if err != nil {
				resultMu.Lock()
				result.Errors = append(result.Errors, apperr.ExtractionFailure("scan.Scan", err))
				resultMu.Unlock()
				logging.Warn("scan: extraction failed for %s: %v", c.path, err)
				continue
			}

			s.emit(Progress{CurrentDirectory: c.dir, CurrentFile: c.path, FilesProcessed: processed, Stage: StageSaving})

			if _, err := s.store.Insert(ctx, track); err != nil {
				if apperr.Is(err, apperr.KindConflict) {
					countersMu.Lock()
					filesSkipped++
					countersMu.Unlock()
					continue
				}
				resultMu.Lock()
				result.Errors = append(result.Errors, err)
				resultMu.Unlock()
				logging.Warn("scan: insert failed for %s: %v", c.path, err)
				continue
			}

			countersMu.Lock()
			filesNew++
			countersMu.Unlock()
			if bar != nil {
				bar.Add(1)
			}
		}
	}

	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	for _, root := range roots {
		select {
		case <-ctx.Done():
			break
		default:
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err != nil {
				logging.Warn("scan: cannot access %s: %v", path, err)
				resultMu.Lock()
				result.Errors = append(result.Errors, err)
				resultMu.Unlock()
				return nil
			}
			if d.IsDir() {
				return nil
			}
			if !s.isAudioFile(path) {
				return nil
			}

			existingMu.RLock()
			already := existing[path]
			existingMu.RUnlock()
			if already {
				countersMu.Lock()
				filesSkipped++
				countersMu.Unlock()
				return nil
			}

			countersMu.Lock()
			filesFound++
			found := filesFound
			countersMu.Unlock()

			s.emit(Progress{CurrentDirectory: filepath.Dir(path), CurrentFile: path, FilesFound: found, Stage: StageScanning})

			select {
			case paths <- candidate{dir: filepath.Dir(path), path: path}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil && walkErr != context.Canceled {
			logging.Warn("scan: error walking root %s: %v", root, walkErr)
			resultMu.Lock()
			result.Errors = append(result.Errors, walkErr)
			resultMu.Unlock()
		}
	}

	close(paths)
	wg.Wait()
	if bar != nil {
		bar.Finish()
	}

	result.FilesDiscovered = filesNew
	result.FilesSkipped = filesSkipped

	return result, nil
}
