package fileops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shaggyze/itpack/internal/archive"
	"github.com/shaggyze/itpack/internal/cipher"
	itperrors "github.com/shaggyze/itpack/internal/errors"
	"github.com/shaggyze/itpack/internal/keyderiv"
	"github.com/shaggyze/itpack/internal/payload"
	"github.com/shaggyze/itpack/internal/search"
	"github.com/shaggyze/itpack/internal/util"
)

// ExtractOptions configures archive extraction.
type ExtractOptions struct {
	ArchivePath string
	OutputDir   string
	CLISalt     string   // salt supplied on the command line; tried first
	Salts       []string // loaded candidate salts (see internal/salts)
	Filters     []string // regular expressions; entry extracted if any matches its name, or if empty
	Parallel    int      // >1 extracts independent entries concurrently, one file handle per worker
	Progress    ProgressFunc
	Status      StatusFunc
	Cancel      CancelFunc
}

// Extract locates the archive's header and entry table via
// internal/search, then extracts every entry matching Filters into
// OutputDir, preserving relative paths. It returns the search.Result
// so callers (e.g. a "list" command) can reuse the discovered
// salts/offsets without searching twice.
func Extract(opts ExtractOptions) (*search.Result, error) {
	f, err := os.Open(opts.ArchivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("extract: %w", itperrors.NewFileError("open", opts.ArchivePath, itperrors.ErrFileNotFound))
		}
		return nil, fmt.Errorf("extract: %w", itperrors.NewFileError("open", opts.ArchivePath, err))
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() < archive.HeaderSize {
		return nil, fmt.Errorf("extract: %s: %w", opts.ArchivePath, itperrors.ErrInvalidFormat)
	}

	candidates := opts.Salts
	if opts.CLISalt != "" {
		candidates = append([]string{opts.CLISalt}, candidates...)
	}

	name := filepath.Base(opts.ArchivePath)
	result, err := search.Find(f, name, candidates)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	filters, err := compileFilters(opts.Filters)
	if err != nil {
		return nil, err
	}

	selected := make([]archive.Entry, 0, len(result.Entries))
	var totalSize int64
	for _, e := range result.Entries {
		if matchesFilters(filters, e.Name) {
			selected = append(selected, e)
			totalSize += int64(e.RawSize)
		}
	}

	if opts.Parallel > 1 {
		err = extractParallel(opts, result, selected, totalSize)
	} else {
		err = extractSequential(f, opts, result, selected, totalSize)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func extractSequential(f *os.File, opts ExtractOptions, result *search.Result, entries []archive.Entry, totalSize int64) error {
	startTime := time.Now()
	var done int64
	for i, e := range entries {
		if opts.Cancel != nil && opts.Cancel() {
			return fmt.Errorf("extract: %w", itperrors.ErrCancelled)
		}
		if err := extractOne(f, opts.OutputDir, result.ContentStart, e); err != nil {
			return err
		}
		done += int64(e.RawSize)
		reportProgress(opts, done, totalSize, startTime, i+1, len(entries))
	}
	return nil
}

// extractParallel extracts entries with a bounded worker pool, one
// *os.File handle per worker, since independent entries share no
// cipher state and the archive's payload region has no inter-entry
// dependency — only a single handle's seek position must never be
// shared across goroutines.
func extractParallel(opts ExtractOptions, result *search.Result, entries []archive.Entry, totalSize int64) error {
	workers := opts.Parallel
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		return nil
	}

	jobs := make(chan archive.Entry, len(entries))
	errs := make(chan error, workers)
	var done int64
	var mu sync.Mutex
	startTime := time.Now()
	var completed int

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fh, err := os.Open(opts.ArchivePath)
			if err != nil {
				errs <- itperrors.Wrap(err, "extract: open worker handle")
				return
			}
			defer fh.Close()

			for e := range jobs {
				if opts.Cancel != nil && opts.Cancel() {
					errs <- fmt.Errorf("extract: %w", itperrors.ErrCancelled)
					return
				}
				if err := extractOne(fh, opts.OutputDir, result.ContentStart, e); err != nil {
					errs <- err
					return
				}
				mu.Lock()
				done += int64(e.RawSize)
				completed++
				reportProgress(opts, done, totalSize, startTime, completed, len(entries))
				mu.Unlock()
			}
		}()
	}

	for _, e := range entries {
		jobs <- e
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return err
	}
	return nil
}

func reportProgress(opts ExtractOptions, done, total int64, start time.Time, i, n int) {
	if opts.Progress == nil {
		return
	}
	progress, speed, eta := util.Statify(done, total, start)
	opts.Progress(progress, fmt.Sprintf("%d/%d", i, n))
	if opts.Status != nil {
		opts.Status(fmt.Sprintf("Extracting at %.2f MiB/s (ETA: %s)", speed, eta))
	}
}

// extractOne reads, decrypts, optionally decompresses, and writes a
// single entry. fh must not be used concurrently by any other
// goroutine while this call is in progress.
func extractOne(fh *os.File, outputDir string, contentStart int64, e archive.Entry) error {
	absOffset := contentStart + int64(e.Offset)*archive.BlockSize
	if _, err := fh.Seek(absOffset, io.SeekStart); err != nil {
		return fmt.Errorf("extract: seek for %s: %w", e.Name, err)
	}

	content := make([]byte, e.RawSize)
	fileKey := keyderiv.FileKey(e.Name, e.Key2)

	if e.AllEncrypted() {
		dec, err := cipher.NewDecoder(fileKey, fh)
		if err != nil {
			return fmt.Errorf("extract: cipher for %s: %w", e.Name, err)
		}
		if _, err := io.ReadFull(dec, content); err != nil {
			return fmt.Errorf("extract: read %s: %w", e.Name, err)
		}
	} else {
		if _, err := io.ReadFull(fh, content); err != nil {
			return fmt.Errorf("extract: read %s: %w", e.Name, err)
		}
	}

	if e.HeadEncrypted() {
		if err := payload.DecryptHead(fileKey, content); err != nil {
			return fmt.Errorf("extract: head-decrypt %s: %w", e.Name, err)
		}
	}

	final := content
	if e.Compressed() {
		if e.RawSize == 0 {
			final = []byte{}
		} else {
			decompressed, err := payload.Decompress(content, e.OriginalSize)
			if err != nil {
				return fmt.Errorf("extract: inflate %s: %w", e.Name, err)
			}
			final = decompressed
		}
	}

	return writeEntryFile(outputDir, e.Name, final)
}

func writeEntryFile(rootDir, relName string, content []byte) error {
	cleaned := strings.ReplaceAll(relName, "\\", "/")
	if strings.Contains(cleaned, "..") {
		return fmt.Errorf("extract: unsafe entry path %q", relName)
	}
	full := filepath.Join(rootDir, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("extract: %w", itperrors.NewFileError("mkdir", filepath.Dir(full), err))
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("extract: %w", itperrors.NewFileError("write", full, err))
	}
	return nil
}

func compileFilters(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("extract: invalid filter %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchesFilters(filters []*regexp.Regexp, name string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, re := range filters {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
