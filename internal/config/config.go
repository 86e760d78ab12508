package config

import (
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `mapstructure:"project_path"`
	OutputDir   string `mapstructure:"output_dir" validate:"required"`
	// ResourcesDir is the folder of OutputDir shared by all tests
	ResourcesDir string `mapstructure:"resources_dir" validate:"required"`

	// Report settings
	ReportDir  string `mapstructure:"report_dir" validate:"required"`
	ReportFile string `mapstructure:"report_file" validate:"required"`

	// Execution settings
	Workers   int    `mapstructure:"workers" validate:"gte=1,lte=64"`
	Scheduler string `mapstructure:"scheduler" validate:"oneof=lineage round-robin"`
	Archive   bool   `mapstructure:"archive"`

	// Paths to ignore when scanning
	PathsToIgnore []string `mapstructure:"paths_to_ignore"`

	Tracker Tracker `mapstructure:"tracker"`

	// Options are the default issue options (assignee, priority, field.*...)
	Options map[string]string `mapstructure:"options"`

	Log Log `mapstructure:"log"`

	// Command flags
	Flags Flags `mapstructure:"-"`
}

// Tracker selects and configures the issue tracker backend.
type Tracker struct {
	Type     string        `mapstructure:"type" validate:"required"`
	URL      string        `mapstructure:"url" validate:"omitempty,url"`
	Project  string        `mapstructure:"project"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`

	// Jira
	CloseTransition string `mapstructure:"close_transition"`

	// GitHub: Project is "owner/repo"
	Label string `mapstructure:"label"`

	// MySQL
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`

	// File
	Path string `mapstructure:"path"`
}

// Log configures the logger.
type Log struct {
	Dir     string `mapstructure:"dir"`
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`
}

// Flags holds command-line flags
type Flags struct {
	Workers    int
	Scheduler  string
	Filter     string
	OutputDir  string
	NoArchive  bool
	DryRun     bool
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:  DefaultProjectPath,
		OutputDir:    DefaultOutputDir,
		ResourcesDir: DefaultResourcesDir,
		ReportDir:    DefaultReportDir,
		ReportFile:   DefaultReportFile,
		Workers:      DefaultWorkers,
		Scheduler:    DefaultScheduler,
		Archive:      true,
		Tracker: Tracker{
			Type:            DefaultTrackerType,
			Timeout:         DefaultTrackerTimeout,
			CloseTransition: DefaultCloseTransition,
			Label:           DefaultGitHubLabel,
			Host:            "127.0.0.1",
			Port:            "3306",
			Database:        DefaultDatabase,
			Path:            DefaultIssueFile,
		},
		Options: map[string]string{},
		Log:     Log{Dir: DefaultLogDir},
		Flags:   Flags{Workers: DefaultWorkers},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// ApplyFlags copies command flags over the loaded values.
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Scheduler != "" {
		c.Scheduler = flags.Scheduler
	}
	if flags.NoArchive {
		c.Archive = false
	}
	if flags.Verbose {
		c.Log.Verbose = true
	}
	if flags.Quiet {
		c.Log.Quiet = true
	}
}

// resolve makes p relative to the project path unless it is absolute.
func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// GetOutputDir returns the test output root, where traces and result folders live.
func (c *Config) GetOutputDir() string {
	return c.resolve(c.OutputDir)
}

// GetReportPath returns the full path to the sync report file.
// Resolves to an absolute path so sync and report always use the same file regardless of cwd.
func (c *Config) GetReportPath() string {
	p := c.resolve(filepath.Join(c.ReportDir, c.ReportFile))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetIssueFilePath returns the store of the file tracker.
func (c *Config) GetIssueFilePath() string {
	return c.resolve(c.Tracker.Path)
}

// GetLogDir returns the directory of the rotating log file.
func (c *Config) GetLogDir() string {
	return c.resolve(c.Log.Dir)
}

// IssueOptions merges the configured options with per-test overrides.
// Keys are canonicalized with OptionKey.
func (c *Config) IssueOptions(overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(c.Options)+len(overrides))
	for _, src := range []map[string]string{c.Options, overrides} {
		for k, v := range src {
			merged[OptionKey(k)] = v
		}
	}
	return merged
}

// OptionKey canonicalizes an issue option key. The "bugtracker." and "jira."
// namespaces are dropped and the key is lower-cased, except for the custom
// field name after "field." which is kept as written.
func OptionKey(key string) string {
	key = strings.TrimSpace(key)
	for _, ns := range []string{"bugtracker.", "jira."} {
		if hasPrefixFold(key, ns) {
			key = key[len(ns):]
		}
	}
	if hasPrefixFold(key, fieldPrefix) {
		return fieldPrefix + key[len(fieldPrefix):]
	}
	return strings.ToLower(key)
}

const fieldPrefix = "field."

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
