package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"javelin/internal/diag"
	"javelin/internal/fixture"
)

// listFixtureFiles returns the sorted list of all fixture files under dir.
func listFixtureFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, fixture.Ext) {
			files = append(files, path)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	// Sorted for a deterministic result order.
	sort.Strings(files)
	return files, nil
}

// DirResult is the outcome for one file of a directory run. Err is per-file:
// one unreadable fixture does not abort the others.
type DirResult struct {
	Path   string
	Result *FileResult
	Err    error
}

// AnalyzeDir analyzes every fixture file under dir in parallel. jobs <= 0
// means GOMAXPROCS. Results come back in sorted path order regardless of
// completion order; only context cancellation aborts the run as a whole.
func AnalyzeDir(ctx context.Context, dir string, opts Options, jobs int) ([]DirResult, error) {
	files, err := listFixtureFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Each goroutine writes its own slot, no mutex needed.
	results := make([]DirResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res, err := AnalyzeFile(gctx, path, opts)
			results[i] = DirResult{Path: path, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// HasErrors reports whether any file produced error-severity diagnostics or
// failed outright.
func HasErrors(results []DirResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
		if r.Result == nil {
			continue
		}
		for _, d := range r.Result.Result.Diagnostics {
			if d.Severity >= diag.SevError {
				return true
			}
		}
	}
	return false
}
