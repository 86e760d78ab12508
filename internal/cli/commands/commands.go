package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bugtrack/internal/cli"
	"bugtrack/internal/config"
	"bugtrack/internal/discovery"
	"bugtrack/internal/logging"
	"bugtrack/internal/migration"
	"bugtrack/internal/parser"
	"bugtrack/internal/storage"
	"bugtrack/internal/ui"
)

// Env is the state shared by commands. It is filled once flags are parsed.
type Env struct {
	Config *config.Config
	Logger *logging.Logger
}

// Log returns the logger, or a no-op logger before setup.
func (e *Env) Log() zerolog.Logger {
	if e.Logger == nil {
		return logging.Nop()
	}
	return e.Logger.Logger
}

// Commands holds all CLI commands
type Commands struct {
	env     *Env
	Sync    *SyncCommand
	List    *ListCommand
	Migrate *MigrateCommand
	Report  *ReportCommand
}

// NewCommands creates all commands with dependencies. Dependencies keep a
// pointer to cfg, which Setup fills from the config file and environment.
func NewCommands(cfg *config.Config) *Commands {
	env := &Env{Config: cfg}

	// Initialize dependencies
	filter := discovery.NewFilter()
	traceParser := parser.NewTraceParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg, jsonStorage)
	dbManager := migration.NewDatabaseManager(cfg)
	migrator := migration.NewSchemaMigrator(cfg, dbManager)
	reportViewer := ui.NewReportViewer(jsonStorage)

	return &Commands{
		env:     env,
		Sync:    NewSyncCommand(env, filter, traceParser, jsonStorage, formatter),
		List:    NewListCommand(env, filter, traceParser, formatter),
		Migrate: NewMigrateCommand(env, migrator),
		Report:  NewReportCommand(env, jsonStorage, formatter, reportViewer),
	}
}

// Setup loads the configuration and builds the logger
func (c *Commands) Setup(flags *cli.Flags) error {
	cfg, err := config.Load(flags.ProjectPath, flags.ToConfigFlags())
	if err != nil {
		return err
	}
	*c.env.Config = *cfg

	logger, err := logging.New(logging.Options{
		Verbose: cfg.Log.Verbose,
		Quiet:   cfg.Log.Quiet,
		Dir:     cfg.GetLogDir(),
	})
	c.env.Logger = logger
	if err != nil {
		logger.Warn().Err(err).Msg("file logging disabled")
	}
	logger.Debug().
		Str("project", cfg.ProjectPath).
		Str("output", cfg.GetOutputDir()).
		Str("tracker", cfg.Tracker.Type).
		Str("tracker_url", logging.SafeValue("tracker.url", cfg.Tracker.URL)).
		Str("tracker_user", logging.SafeValue("tracker.user", cfg.Tracker.User)).
		Int("workers", cfg.Workers).
		Str("scheduler", cfg.Scheduler).
		Msg("configuration loaded")
	return nil
}

// Teardown releases what Setup acquired
func (c *Commands) Teardown() error {
	return c.env.Logger.Close()
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVar(&flags.ProjectPath, "project", config.DefaultProjectPath, "Project directory holding .bugtrack.yaml and .env")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Config file (default <project>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Only log warnings and errors")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.Setup(flags)
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return c.Teardown()
	}

	// Sync command
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the bug tracker with test traces",
		Long:  "Evaluate every test trace of the output directory and create, update or close tracker issues",
		RunE:  c.Sync.Execute,
	}
	syncCmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "Test output directory holding traces and result folders")
	syncCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*Login*')")
	syncCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of workers (default from config)")
	syncCmd.Flags().StringVar(&flags.Scheduler, "scheduler", "", "Distribution of outcomes over workers: lineage or round-robin (default from config)")
	syncCmd.Flags().BoolVar(&flags.NoArchive, "no-archive", false, "Do not attach the zipped result folder to new issues")
	syncCmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "Decide actions without changing the tracker")
	rootCmd.AddCommand(syncCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered test traces",
		Long:  "Scan the output directory and list test traces with their verdict",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "Test output directory holding traces")
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*Login*')")
	rootCmd.AddCommand(listCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database of the mysql tracker",
		Long:  "Create the MySQL database and tables used by the mysql tracker backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Migrate.Execute(cmd, flags.Fresh)
		},
	}
	migrateCmd.Flags().BoolVar(&flags.Fresh, "fresh", false, "Drop the issue tables first (loses every recorded issue)")
	rootCmd.AddCommand(migrateCmd)

	// Report command
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "View the last sync report",
		Long:  "Display the decisions of the last sync in an interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Report.Execute(cmd, flags.Stats)
		},
	}
	reportCmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print statistics instead of opening the viewer")
	rootCmd.AddCommand(reportCmd)
}
