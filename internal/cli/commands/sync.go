package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bugtrack/internal/discovery"
	"bugtrack/internal/domain"
	"bugtrack/internal/execution"
	"bugtrack/internal/issue"
	"bugtrack/internal/packager"
	"bugtrack/internal/parser"
	"bugtrack/internal/storage"
	"bugtrack/internal/tracker"
	"bugtrack/internal/ui"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	env       *Env
	filter    *discovery.Filter
	parser    *parser.TraceParser
	storage   storage.Storage
	formatter *ui.Formatter
}

// NewSyncCommand creates a new SyncCommand
func NewSyncCommand(
	env *Env,
	filter *discovery.Filter,
	traceParser *parser.TraceParser,
	st storage.Storage,
	formatter *ui.Formatter,
) *SyncCommand {
	return &SyncCommand{
		env:       env,
		filter:    filter,
		parser:    traceParser,
		storage:   st,
		formatter: formatter,
	}
}

// Execute runs the command. Tracker failures are reported per outcome and
// never fail the command; configuration and discovery failures do.
func (sc *SyncCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := sc.env.Config
	logger := sc.env.Log()

	outcomes, err := loadOutcomes(sc.env, sc.filter, sc.parser)
	if err != nil {
		return err
	}
	if len(outcomes) == 0 {
		color.Yellow("No test traces to process")
		return nil
	}

	tr, err := tracker.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracker.Release(tr); err != nil {
			logger.Warn().Err(err).Msg("tracker not released")
		}
	}()

	scheduler, err := execution.NewScheduler(cfg.Scheduler)
	if err != nil {
		return err
	}

	var pk packager.ArtifactPackager = packager.Disabled{}
	if cfg.Archive {
		pk = packager.New(logger, "").WithResourcesDir(cfg.ResourcesDir)
	}
	manager := issue.NewManager(cfg, tr, pk, logger)

	pool := execution.NewWorkerPool(cfg.Workers, execution.NewRunner(manager, logger), scheduler)
	if !cfg.Log.Quiet {
		pool.SetProgress(ui.NewProgressBar(len(outcomes)))
	}

	decisions, duration, execErr := pool.Execute(cmd.Context(), outcomes)

	report, err := sc.storage.Save(decisions, storage.Run{
		Tracker:  tr.Type(),
		Duration: duration,
		Workers:  cfg.Workers,
		DryRun:   cfg.Flags.DryRun,
	})
	if err != nil {
		logger.Error().Err(err).Msg("sync report not saved")
		fallback := storage.NewReport(decisions, storage.Run{Tracker: tr.Type(), Duration: duration, Workers: cfg.Workers, DryRun: cfg.Flags.DryRun})
		report = &fallback
	}

	sc.formatter.PrintReport(report)
	return execErr
}

// loadOutcomes discovers and parses the traces of the output directory, then
// keeps the outcomes whose test name matches the filter. Unreadable traces are
// logged and skipped.
func loadOutcomes(env *Env, filter *discovery.Filter, traceParser *parser.TraceParser) ([]domain.TestOutcome, error) {
	traces, err := discoverTraces(env)
	if err != nil {
		return nil, err
	}

	outcomes, errs := traceParser.ParseAll(traces)
	logger := env.Log()
	for _, err := range errs {
		logger.Warn().Err(err).Msg("trace skipped")
	}
	return filter.FilterOutcomes(outcomes, env.Config.Flags.Filter), nil
}

func discoverTraces(env *Env) ([]string, error) {
	cfg := env.Config
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	return scanner.Scan(cfg.GetOutputDir())
}
