package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"bugtrack/internal/domain"
)

// ProgressBar creates and manages progress bars
type ProgressBar struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	done  int
	tally Tally
}

// Tally counts decisions by kind.
type Tally struct {
	Created   int
	Updated   int
	Closed    int
	Unchanged int
	Errors    int
}

// Add counts one decision.
func (t *Tally) Add(d domain.Decision) {
	if d.Failed() {
		t.Errors++
		return
	}
	switch d.Kind {
	case domain.ActionCreate:
		t.Created++
	case domain.ActionUpdate:
		t.Updated++
	case domain.ActionClose:
		t.Closed++
	default:
		t.Unchanged++
	}
}

// NewProgressBar creates a new progress bar on stderr
func NewProgressBar(count int) *ProgressBar {
	return newProgressBar(count, os.Stderr)
}

func newProgressBar(count int, w io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(describe(Tally{})),
		progressbar.OptionSetWidth(50),
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

	return &ProgressBar{bar: bar}
}

// Record advances the bar by one decision
func (p *ProgressBar) Record(d domain.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.tally.Add(d)
	_ = p.bar.Set(p.done)
	p.bar.Describe(describe(p.tally))
}

// Tally returns the counts recorded so far
func (p *ProgressBar) Tally() Tally {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tally
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	_ = p.bar.Finish()
}

func describe(t Tally) string {
	return color.CyanString("Syncing issues: ") +
		color.GreenString("[created: %d", t.Created) +
		" | " +
		color.YellowString("updated: %d", t.Updated) +
		" | " +
		color.BlueString("closed: %d", t.Closed) +
		" | " +
		color.RedString("errors: %d]", t.Errors)
}
