// Package driver orchestrates checker runs: file discovery, per-file
// pipelines, parallel directory processing and the persistent result
// cache. The core analyzers stay pure; everything touching the filesystem
// lives here.
package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"uselint/internal/check"
	"uselint/internal/diag"
	"uselint/internal/source"
)

// DefaultMaxDiagnostics bounds per-file bags when the caller does not.
const DefaultMaxDiagnostics = 100

// Options configures CheckDir.
type Options struct {
	// Jobs is the parallel worker limit; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds each file's bag; 0 means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// Cache, when non-nil, replays unchanged files from disk.
	Cache *DiskCache
	// Events, when non-nil, receives progress notifications.
	Events chan<- Event
	// Extensions lists the file suffixes to pick up; defaults to ".rs".
	Extensions []string
}

func (o *Options) jobs() int {
	if o.Jobs > 0 {
		return o.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return DefaultMaxDiagnostics
}

func (o *Options) extensions() []string {
	if len(o.Extensions) > 0 {
		return o.Extensions
	}
	return []string{".rs"}
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path      string
	FileID    source.FileID
	Bag       *diag.Bag
	Report    check.Report
	FromCache bool
}

// Summary aggregates a directory run.
type Summary struct {
	Files       int
	Diagnostics int
	HasErrors   bool
	HasWarnings bool
}

// Summarize folds per-file results into one summary.
func Summarize(results []FileResult) Summary {
	var s Summary
	for _, res := range results {
		s.Files++
		if res.Bag == nil {
			continue
		}
		s.Diagnostics += res.Bag.Len()
		s.HasErrors = s.HasErrors || res.Bag.HasErrors()
		s.HasWarnings = s.HasWarnings || res.Bag.HasWarnings()
	}
	return s
}

// ListFiles returns the sorted list of files under dir matching any of the
// given suffixes.
func ListFiles(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Deterministic processing and output order.
	sort.Strings(files)
	return files, nil
}

// CheckFile loads one file into fileSet and runs the analyzers. Load
// failures degrade to an IO diagnostic instead of an error; the returned
// error only reflects invalid input to the core.
func CheckFile(fileSet *source.FileSet, path string, cfg *check.Config, maxDiagnostics int) (FileResult, error) {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)

	fileID, err := fileSet.Load(path)
	if err != nil {
		bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{},
			"failed to load file: "+err.Error()))
		return FileResult{Path: path, Bag: bag}, nil
	}

	report, err := check.RunFile(fileSet.Get(fileID), cfg, bag)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Path: path, FileID: fileID, Bag: bag, Report: report}, nil
}

// CheckVirtual checks in-memory content (stdin, tests) under the given
// name.
func CheckVirtual(fileSet *source.FileSet, name string, content []byte, cfg *check.Config, maxDiagnostics int) (FileResult, error) {
	if maxDiagnostics <= 0 {
		maxDiagnostics = DefaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)

	fileID := fileSet.AddVirtual(name, content)
	report, err := check.RunFile(fileSet.Get(fileID), cfg, bag)
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{Path: name, FileID: fileID, Bag: bag, Report: report}, nil
}

// CheckDir checks every matching file under dir in parallel. Each file's
// pipeline is independent: its own bag, no shared mutable state. Results
// come back in the discovery order regardless of completion order.
// Cancellation stops remaining files but never interrupts one mid-file.
func CheckDir(ctx context.Context, dir string, cfg *check.Config, opts Options) (*source.FileSet, []FileResult, error) {
	if cfg == nil {
		return nil, nil, check.ErrInvalidInput
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	files, err := ListFiles(dir, opts.extensions())
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	// Files load up-front so the FileSet is never mutated from workers.
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		fileID, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = fileID
	}

	maxDiagnostics := opts.maxDiagnostics()
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.jobs(), len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			emit(opts.Events, Event{Kind: EventStarted, Path: path})

			if loadErr, failed := loadErrors[path]; failed {
				bag := diag.NewBag(maxDiagnostics)
				bag.Add(diag.New(diag.SevError, diag.IOLoadFileError, source.Span{},
					"failed to load file: "+loadErr.Error()))
				results[i] = FileResult{Path: path, Bag: bag}
				emit(opts.Events, Event{Kind: EventFailed, Path: path, Diagnostics: 1, HasErrors: true})
				return nil
			}

			fileID := fileIDs[path]
			file := fileSet.Get(fileID)

			// Unchanged content with an unchanged config replays from disk.
			if opts.Cache != nil {
				key := CacheKey(file.Hash, cfg)
				var payload ReportPayload
				if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
					bag := bagFromPayload(&payload, fileID, maxDiagnostics)
					results[i] = FileResult{
						Path:      path,
						FileID:    fileID,
						Bag:       bag,
						Report:    check.Report{Diags: bag.Items(), HasErrors: bag.HasErrors()},
						FromCache: true,
					}
					emit(opts.Events, Event{
						Kind: EventFinished, Path: path,
						Diagnostics: bag.Len(), HasErrors: bag.HasErrors(), FromCache: true,
					})
					return nil
				}
			}

			bag := diag.NewBag(maxDiagnostics)
			report, err := check.RunFile(file, cfg, bag)
			if err != nil {
				return err
			}
			results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Report: report}

			if opts.Cache != nil {
				// Cache failures are invisible: the next run just re-checks.
				_ = opts.Cache.Put(CacheKey(file.Hash, cfg), payloadFromBag(path, bag))
			}

			emit(opts.Events, Event{
				Kind: EventFinished, Path: path,
				Diagnostics: bag.Len(), HasErrors: bag.HasErrors(),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// MergeBags folds all per-file bags into one and sorts it, so output built
// from the merged bag has a total order across files.
func MergeBags(results []FileResult) *diag.Bag {
	merged := diag.NewBag(DefaultMaxDiagnostics)
	for _, res := range results {
		merged.Merge(res.Bag)
	}
	merged.Sort()
	return merged
}

func emit(ch chan<- Event, ev Event) {
	if ch != nil {
		ch <- ev
	}
}
