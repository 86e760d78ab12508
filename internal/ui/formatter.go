package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
	"bugtrack/internal/parser"
	"bugtrack/internal/storage"
)

// Formatter formats and displays output
type Formatter struct {
	config  *config.Config
	storage storage.Storage
	out     io.Writer
}

// NewFormatter creates a new Formatter writing to the color-aware stdout
func NewFormatter(cfg *config.Config, st storage.Storage) *Formatter {
	return &Formatter{
		config:  cfg,
		storage: st,
		out:     color.Output,
	}
}

// SetOutput redirects the formatter output
func (f *Formatter) SetOutput(w io.Writer) {
	f.out = w
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	blue   = color.New(color.FgBlue)
	red    = color.New(color.FgRed)
	white  = color.New(color.FgWhite)
)

// PrintMetaStats loads the last report and displays its statistics
func (f *Formatter) PrintMetaStats() error {
	report, err := f.storage.Load()
	if err != nil {
		return err
	}
	f.PrintReport(report)
	return nil
}

// PrintReport displays the statistics of a report and the issues it touched
func (f *Formatter) PrintReport(report *domain.SyncReport) {
	meta := report.Meta
	w := f.out

	// Print header
	fmt.Fprint(w, "\n")
	cyan.Fprintln(w, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(w, "║                    Issue Tracking Statistics                  ║")
	cyan.Fprintln(w, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Tracker", meta.Tracker, white},
		{"Test Outcomes", fmt.Sprint(meta.TotalOutcomes), white},
		{"Passed Outcomes", fmt.Sprint(meta.PassedOutcomes), green},
		{"Failed Outcomes", fmt.Sprint(meta.FailedOutcomes), red},
		{"Issues Created", fmt.Sprint(meta.Created), yellow},
		{"Issues Updated", fmt.Sprint(meta.Updated), yellow},
		{"Issues Closed", fmt.Sprint(meta.Closed), blue},
		{"Unchanged", fmt.Sprint(meta.Unchanged), white},
		{"Errors", fmt.Sprint(meta.Errors), red},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Timestamp", meta.Timestamp, white},
	}

	// Print table
	fmt.Fprintln(w, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(w, "│ %-31s │ ", row.label)
		row.c.Fprintf(w, "%-27s", row.value)
		fmt.Fprintln(w, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(w, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(w, "└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(w)
	if meta.DryRun {
		yellow.Fprintln(w, "! Dry run: the tracker was not changed")
	}
	touched := meta.Created + meta.Updated + meta.Closed
	switch {
	case meta.Errors > 0:
		red.Fprintf(w, "✗ %d outcome(s) could not be tracked\n", meta.Errors)
	case touched == 0:
		green.Fprintln(w, "✓ Tracker already up to date")
	default:
		green.Fprintf(w, "✓ %d issue(s) changed\n", touched)
	}
	f.printDecisionTree(report.Decisions)
}

// TreeNode represents a suite and the decisions of its tests
type TreeNode struct {
	Name      string
	Decisions []domain.Decision
}

// printDecisionTree prints decisions that changed something or failed, by suite
func (f *Formatter) printDecisionTree(decisions []domain.Decision) {
	suites := make(map[string]*TreeNode)
	for _, d := range decisions {
		if d.Kind == domain.ActionNone && !d.Failed() {
			continue
		}
		node := suites[d.Suite]
		if node == nil {
			node = &TreeNode{Name: d.Suite}
			suites[d.Suite] = node
		}
		node.Decisions = append(node.Decisions, d)
	}
	if len(suites) == 0 {
		return
	}

	// Sort suites for consistent output
	names := make([]string, 0, len(suites))
	for name := range suites {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(f.out)
	for i, name := range names {
		node := suites[name]
		isLastSuite := i == len(names)-1
		if isLastSuite {
			cyan.Fprintf(f.out, "└── %s\n", node.Name)
		} else {
			cyan.Fprintf(f.out, "├── %s\n", node.Name)
		}

		for j, d := range node.Decisions {
			var prefix string
			isLastCase := j == len(node.Decisions)-1
			switch {
			case isLastSuite && isLastCase:
				prefix = "    └── "
			case isLastSuite:
				prefix = "    ├── "
			case isLastCase:
				prefix = "│   └── "
			default:
				prefix = "│   ├── "
			}
			fmt.Fprint(f.out, prefix)
			f.printDecision(d)
		}
	}
}

func (f *Formatter) printDecision(d domain.Decision) {
	if d.Failed() {
		red.Fprintf(f.out, "%s [error] %s\n", d.TestName, d.Error)
		return
	}
	label := KindLabel(d.Kind)
	issue := ""
	if d.IssueID != "" {
		issue = " #" + d.IssueID
	}
	switch d.Kind {
	case domain.ActionClose:
		blue.Fprintf(f.out, "%s [%s%s]\n", d.TestName, label, issue)
	default:
		yellow.Fprintf(f.out, "%s [%s%s]\n", d.TestName, label, issue)
	}
}

// KindLabel returns the display label of an action kind
func KindLabel(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionCreate:
		return "created"
	case domain.ActionUpdate:
		return "updated"
	case domain.ActionClose:
		return "closed"
	default:
		return "unchanged"
	}
}

// PrintTraceList prints discovered traces with their verdict. Outcomes are
// matched to traces by source path; traces without outcome could not be read.
func (f *Formatter) PrintTraceList(traces []string, outcomes []domain.TestOutcome) {
	bySource := make(map[string]domain.TestOutcome, len(outcomes))
	for _, o := range outcomes {
		bySource[o.SourcePath] = o
	}

	green.Fprintf(f.out, "Found %d trace file(s):\n\n", len(traces))

	root := f.config.GetOutputDir()
	unreadable := 0
	for i, trace := range traces {
		// Get relative path for cleaner display
		relPath, err := filepath.Rel(root, trace)
		if err != nil || strings.HasPrefix(relPath, "..") {
			relPath = trace
		}

		marker := red.Sprint("[?]")
		name := ""
		if o, ok := bySource[trace]; ok {
			if o.Passed {
				marker = green.Sprint("[P]")
			} else {
				marker = red.Sprint("[F]")
			}
			if o.TestName != parser.TraceName(trace) {
				name = " " + white.Sprintf("(%s)", o.TestName)
			}
		} else {
			unreadable++
		}

		connector := "├── "
		if i == len(traces)-1 {
			connector = "└── "
		}
		fmt.Fprintf(f.out, "%s%s %s%s\n", connector, marker, cyan.Sprint(filepath.ToSlash(relPath)), name)
	}

	passed, failed := parser.Counts(outcomes)
	fmt.Fprintf(f.out, "\n%s passed, %s failed, %s unreadable\n",
		green.Sprint(passed), red.Sprint(failed), yellow.Sprint(unreadable))
}
