package cli

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// cancelState is a process-wide cancellation flag set by the SIGINT/
// SIGTERM handler in Execute and polled by long-running pack/extract
// operations via fileops.CancelFunc.
type cancelState struct {
	cancelled atomic.Bool
}

func newCancelState() *cancelState { return &cancelState{} }

func (c *cancelState) cancel()           { c.cancelled.Store(true) }
func (c *cancelState) isCancelled() bool { return c.cancelled.Load() }

// Reporter adapts fileops' ProgressFunc/StatusFunc/CancelFunc to a
// terminal progress bar.
type Reporter struct {
	bar   *progressbar.ProgressBar
	quiet bool
}

// NewReporter creates a Reporter for an operation covering total bytes.
// If quiet is true, no bar is drawn and only errors print.
func NewReporter(total int64, description string, quiet bool) *Reporter {
	if quiet {
		return &Reporter{quiet: true}
	}
	bar := progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100_000_000),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	return &Reporter{bar: bar}
}

// Progress implements fileops.ProgressFunc. A Reporter created with an
// unknown total (max64 <= 0) renders an indeterminate spinner and only
// updates its description; Set is meaningless without a denominator.
func (r *Reporter) Progress(fraction float32, info string) {
	if r.quiet || r.bar == nil {
		return
	}
	if r.bar.GetMax64() > 0 {
		_ = r.bar.Set(int(fraction * float32(r.bar.GetMax64())))
	}
	r.bar.Describe(info)
}

// Status implements fileops.StatusFunc.
func (r *Reporter) Status(status string) {
	if r.quiet || r.bar == nil {
		return
	}
	r.bar.Describe(status)
}

// Cancel implements fileops.CancelFunc, polling the process-wide
// cancellation flag set by Execute's signal handler.
func (r *Reporter) Cancel() bool {
	if globalCancel == nil {
		return false
	}
	return globalCancel.isCancelled()
}

// Finish closes out the progress bar.
func (r *Reporter) Finish() {
	if !r.quiet && r.bar != nil {
		_ = r.bar.Finish()
	}
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
