package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bugtrack/internal/discovery"
	"bugtrack/internal/parser"
	"bugtrack/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	env       *Env
	filter    *discovery.Filter
	parser    *parser.TraceParser
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	env *Env,
	filter *discovery.Filter,
	traceParser *parser.TraceParser,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		env:       env,
		filter:    filter,
		parser:    traceParser,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	traces, err := discoverTraces(lc.env)
	if err != nil {
		return err
	}

	outcomes, errs := lc.parser.ParseAll(traces)
	logger := lc.env.Log()
	for _, err := range errs {
		logger.Warn().Err(err).Msg("trace unreadable")
	}

	// unreadable traces have no test name to filter on
	if pattern := lc.env.Config.Flags.Filter; pattern != "" {
		outcomes = lc.filter.FilterOutcomes(outcomes, pattern)
		traces = make([]string, 0, len(outcomes))
		for _, o := range outcomes {
			traces = append(traces, o.SourcePath)
		}
	}

	if len(traces) == 0 {
		color.Yellow("No test traces found")
		return nil
	}

	lc.formatter.PrintTraceList(traces, outcomes)
	return nil
}
