// Package progress renders per-phase progress on stderr: a counted bar for
// file extraction, a spinner for phases with no known total. Bars are hidden
// when stderr is not a terminal, so piped and redirected runs stay clean;
// skip and failure notices still print.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker drives the progress display for one pipeline phase.
type Tracker struct {
	bar   *progressbar.ProgressBar
	label string
	out   io.Writer
}

// NewSpinner creates a spinner for a phase with no known total, such as
// scoring, where fan-out hides the unit count.
func NewSpinner(label string) *Tracker {
	return newSpinner(label, os.Stderr)
}

func newSpinner(label string, w io.Writer) *Tracker {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetVisibility(interactive(w)),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// NewTracker creates a counted bar for a phase with a known total, one tick
// per file.
func NewTracker(label string, total int) *Tracker {
	return newTracker(label, total, os.Stderr)
}

func newTracker(label string, total int, w io.Writer) *Tracker {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetVisibility(interactive(w)),
		progressbar.OptionClearOnFinish(),
	)
	return &Tracker{bar: bar, label: label, out: w}
}

// Tick records one completed unit. Safe for concurrent use.
func (t *Tracker) Tick() {
	_ = t.bar.Add(1)
}

// FinishSuccess clears the display. Completed phases stay silent.
func (t *Tracker) FinishSuccess() {
	t.finish("")
}

// FinishSkipped clears the display and notes why the phase was skipped.
func (t *Tracker) FinishSkipped(reason string) {
	t.finish(fmt.Sprintf("%s skipped: %s", t.label, reason))
}

// FinishError clears the display and reports the phase failure.
func (t *Tracker) FinishError(err error) {
	t.finish(fmt.Sprintf("%s failed: %v", t.label, err))
}

func (t *Tracker) finish(msg string) {
	_ = t.bar.Finish()
	_ = t.bar.Clear()
	if msg != "" {
		fmt.Fprintf(t.out, "  %s\n", msg)
	}
}

// interactive reports whether w is a terminal.
func interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
