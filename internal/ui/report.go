package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"bugtrack/internal/domain"
	"bugtrack/internal/storage"
)

// ReportViewer displays the decisions of a sync report in an interactive TUI
type ReportViewer struct {
	storage storage.Storage
}

// NewReportViewer creates a new ReportViewer
func NewReportViewer(st storage.Storage) *ReportViewer {
	return &ReportViewer{storage: st}
}

// View displays the decisions that touched an issue or failed.
// R toggles the reviewed flag, which is saved back to the report.
func (rv *ReportViewer) View(report *domain.SyncReport) error {
	indexes := Notable(report.Decisions)
	if len(indexes) == 0 {
		color.Green("✓ No issue changes in the last sync!")
		return nil
	}
	decisions := report.Decisions

	// Create the application
	app := tview.NewApplication()

	// Create list for decisions (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(pos int) string {
		return listItemText(pos, decisions[indexes[pos]])
	}

	updateListItem := func(pos int) {
		if pos < 0 || pos >= list.GetItemCount() {
			return
		}
		list.SetItemText(pos, getListItemText(pos), "")
	}

	for pos := range indexes {
		list.AddItem(getListItemText(pos), "", 0, nil)
	}

	// Set list colors for better visibility
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Create stats header view (shows summary and issue)
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Create text view for decision details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	// list on left (1/3), details on right (2/3)
	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		unreviewed := 0
		for _, idx := range indexes {
			if !decisions[idx].Reviewed {
				unreviewed++
			}
		}
		headerView.SetText(fmt.Sprintf(" Issue changes (%d total, %d to review) | Use ↑↓ to navigate, [yellow]R[white] to mark reviewed, → to view details, ← to go back, Ctrl+C to exit ", len(indexes), unreviewed))
	}
	updateHeader()

	updateDetails := func() {
		pos := list.GetCurrentItem()
		if pos >= 0 && pos < len(indexes) {
			d := decisions[indexes[pos]]
			statsView.SetText(formatDecisionStats(d))
			detailsView.SetText(formatDecisionDetails(d))
		}
	}

	var saveErr error
	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				pos := list.GetCurrentItem()
				if pos >= 0 && pos < len(indexes) {
					idx := indexes[pos]
					decisions[idx].Reviewed = !decisions[idx].Reviewed
					updateListItem(pos)
					updateHeader()
					updateDetails()
					saveErr = rv.storage.SaveOutput(report)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if saveErr != nil {
		return fmt.Errorf("failed to save review status: %w", saveErr)
	}
	return nil
}

// Notable returns the indexes of decisions that changed an issue or failed
func Notable(decisions []domain.Decision) []int {
	var indexes []int
	for i, d := range decisions {
		if d.Kind != domain.ActionNone || d.Failed() {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

func listItemText(pos int, d domain.Decision) string {
	name := d.TestName
	if name == "" {
		name = fmt.Sprintf("Test %d", pos+1)
	}
	label := KindLabel(d.Kind)
	if d.Failed() {
		label = "error"
	}
	if d.Reviewed {
		return fmt.Sprintf("[gray]✓ %d. %s (%s)[white]", pos+1, name, label)
	}
	if d.Failed() {
		return fmt.Sprintf("[yellow]%d.[white] %s ([red]%s[white])", pos+1, name, label)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s ([yellow]%s[white])", pos+1, name, label)
}

// formatDecisionDetails formats a decision for display using tview color tags
func formatDecisionDetails(d domain.Decision) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if d.Failed() {
		fmt.Fprintf(w, "[red]✗ Test: %s[white]\n\n", d.TestName)
	} else {
		fmt.Fprintf(w, "[green]✓ Test: %s[white]\n\n", d.TestName)
	}

	fmt.Fprintf(w, "[cyan]Summary:[white]\t%s\n", tview.Escape(d.Summary))
	fmt.Fprintf(w, "[cyan]Action:[white]\t%s\n", KindLabel(d.Kind))
	if d.IssueID != "" {
		fmt.Fprintf(w, "[cyan]Issue:[white]\t%s\n", d.IssueID)
	}
	if d.StepIndex > 0 {
		fmt.Fprintf(w, "[cyan]Failed at step:[white]\t%d\n", d.StepIndex)
	}
	if d.Archive != "" {
		fmt.Fprintf(w, "[cyan]Archive:[white]\t%s\n", d.Archive)
	}
	if d.Source != "" {
		fmt.Fprintf(w, "[cyan]Trace:[white]\t%s\n", d.Source)
	}
	fmt.Fprintf(w, "\n")

	if d.Message != "" {
		fmt.Fprintf(w, "[yellow]Message:[white]\n%s\n\n", tview.Escape(d.Message))
	}
	if d.Error != "" {
		fmt.Fprintf(w, "[yellow]Error:[white]\n%s\n", tview.Escape(d.Error))
	}

	w.Flush()
	return builder.String()
}

// formatDecisionStats formats the stats header for a decision
func formatDecisionStats(d domain.Decision) string {
	suite := d.Suite
	if suite == "" {
		suite = "Unknown suite"
	}
	status := "[red]failing"
	if d.Passed {
		status = "[green]passing"
	}
	return fmt.Sprintf("[cyan]suite:[white] [yellow]%s[white]::[yellow]%s[white] %s[white]\n", suite, d.TestName, status)
}

var _ Viewer = (*ReportViewer)(nil)
