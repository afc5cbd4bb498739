package sweep

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/fmelo/scasweep/pkg/sca"
	"github.com/fmelo/scasweep/pkg/types"
)

// ScaSuffix is the scalar-result file extension convention.
const ScaSuffix = ".sca"

// ParsedFile is one result file after parse and key resolution. Records are
// read-only once the file leaves the worker pool.
type ParsedFile struct {
	Path     string
	Key      types.Dbm
	Resolved bool
	Attrs    sca.Attributes
	Records  []sca.Record
	// BadValues counts non-numeric value tokens in this file (records kept
	// with NaN).
	BadValues int
}

// FileError pairs a path with the error that prevented parsing it.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

// Diagnostics counts the anomalies the pipeline recovered from. The caller
// decides whether any of them is fatal.
type Diagnostics struct {
	Files         int // files successfully parsed
	Failures      []FileError
	UnresolvedKey int // files excluded from aggregation (kept in raw table)
	BadValues     int // records carrying NaN from a malformed value token
}

// Discover walks root recursively and returns all .sca paths, sorted.
// It fails when root does not exist or contains no result files.
func Discover(root string) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRoot, root)
	}
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ScaSuffix {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: walk %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFiles, root)
	}
	sort.Strings(paths)
	return paths, nil
}

// Collect parses all paths with a pool of workers and resolves each file's
// key. Parsing is embarrassingly parallel: workers share nothing and send
// their batch over a channel; only the collecting goroutine appends, and it
// returns after the pool has fully drained (aggregation may then run).
// workers <= 0 selects GOMAXPROCS.
func Collect(paths []string, res *Resolver, workers int) ([]ParsedFile, Diagnostics) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type item struct {
		pf  ParsedFile
		err error
	}

	jobs := make(chan string)
	out := make(chan item)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				r, err := sca.ParseFile(path)
				if err != nil {
					out <- item{pf: ParsedFile{Path: path}, err: err}
					continue
				}
				pf := ParsedFile{
					Path:      path,
					Attrs:     r.Attrs,
					Records:   r.Records,
					BadValues: r.BadValues,
				}
				pf.Key, pf.Resolved = res.Resolve(path, r.Attrs)
				out <- item{pf: pf}
			}
		}()
	}

	go func() {
		for _, p := range paths {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	var (
		files []ParsedFile
		diag  Diagnostics
	)
	for it := range out {
		if it.err != nil {
			diag.Failures = append(diag.Failures, FileError{Path: it.pf.Path, Err: it.err})
			continue
		}
		diag.Files++
		diag.BadValues += it.pf.BadValues
		if !it.pf.Resolved {
			diag.UnresolvedKey++
		}
		files = append(files, it.pf)
	}

	// Pool scheduling shuffles completion order; restore the input order so
	// downstream output is deterministic.
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, diag
}

// FlatRecord is one row of the raw/debug table: a scalar record with its file
// provenance, resolved key, and the file's attributes merged in.
type FlatRecord struct {
	File     string
	Key      types.Dbm
	Resolved bool
	Module   string
	Name     string
	Value    float64
	Unit     string
	Attrs    sca.Attributes
}

// Flatten concatenates all per-file batches into the raw table. Records from
// files with unresolved keys are retained here even though aggregation skips
// them.
func Flatten(files []ParsedFile) []FlatRecord {
	var n int
	for _, f := range files {
		n += len(f.Records)
	}
	out := make([]FlatRecord, 0, n)
	for _, f := range files {
		for _, r := range f.Records {
			out = append(out, FlatRecord{
				File:     f.Path,
				Key:      f.Key,
				Resolved: f.Resolved,
				Module:   r.Module,
				Name:     r.Name,
				Value:    r.Value,
				Unit:     r.Unit,
				Attrs:    f.Attrs,
			})
		}
	}
	return out
}
