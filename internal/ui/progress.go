package ui

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"casegen/internal/core"
)

var (
	infoLine    = color.New(color.FgCyan)
	successLine = color.New(color.FgGreen)
	warnLine    = color.New(color.FgYellow)
	errorLine   = color.New(color.FgRed)
)

// ProgressObserver prints workflow transitions as status lines and shows a
// progress bar while requirements are being extracted. Percent may be read
// from any goroutine while a Controller drives the observer.
type ProgressObserver struct {
	w io.Writer

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	percent int
}

var _ core.Observer = (*ProgressObserver)(nil)

func NewProgressObserver(w io.Writer) *ProgressObserver {
	return &ProgressObserver{w: w}
}

// Percent returns the last reported extraction progress.
func (o *ProgressObserver) Percent() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.percent
}

func (o *ProgressObserver) StateChanged(change core.StateChange) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch change.To {
	case core.StateFileSelected:
		infoLine.Fprintln(o.w, "● File accepted")
	case core.StateExtracting:
		o.percent = 0
		o.bar = newExtractionBar(o.w)
	case core.StateAwaitingGeneration:
		o.finishBar()
		infoLine.Fprintln(o.w, "● Generating test cases...")
	case core.StateResults:
		successLine.Fprintln(o.w, "✓ Test cases generated")
	case core.StateError:
		o.clearBar()
		errorLine.Fprintf(o.w, "✗ %s\n", change.Message)
	case core.StateIdle:
		o.clearBar()
		if change.From != core.StateIdle {
			warnLine.Fprintln(o.w, "! Workflow reset")
		}
	}
}

func (o *ProgressObserver) ProgressChanged(percent int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.percent = percent
	if o.bar != nil {
		_ = o.bar.Set(percent)
	}
}

func (o *ProgressObserver) finishBar() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	o.bar = nil
}

func (o *ProgressObserver) clearBar() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Clear()
	fmt.Fprint(o.w, "\n")
	o.bar = nil
}

func newExtractionBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetDescription(color.CyanString("Extracting requirements")),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}
