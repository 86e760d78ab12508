package commands

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"bugtrack/internal/storage"
	"bugtrack/internal/ui"
)

// ReportCommand handles the report command
type ReportCommand struct {
	env       *Env
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    ui.Viewer
}

// NewReportCommand creates a new ReportCommand
func NewReportCommand(env *Env, st storage.Storage, formatter *ui.Formatter, viewer ui.Viewer) *ReportCommand {
	return &ReportCommand{
		env:       env,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
	}
}

// Execute runs the command. Without a terminal the statistics are printed.
func (rc *ReportCommand) Execute(cmd *cobra.Command, stats bool) error {
	if stats || !term.IsTerminal(int(os.Stdout.Fd())) {
		return rc.formatter.PrintMetaStats()
	}

	report, err := rc.storage.Load()
	if err != nil {
		return err
	}
	return rc.viewer.View(report)
}
