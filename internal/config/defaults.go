package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputDir is the default test output directory, relative to the project
	DefaultOutputDir = "test-output"
	// DefaultResourcesDir is the folder shared by all tests of a run
	DefaultResourcesDir = "resources"
	// DefaultReportFile is the default sync report file name
	DefaultReportFile = "bugtrack-report.json"
	// DefaultReportDir is the default report directory, relative to the project
	DefaultReportDir = "storage"
	// DefaultWorkers is the default number of workers
	DefaultWorkers = 4
	// DefaultScheduler keeps outcomes of one issue on one worker
	DefaultScheduler = "lineage"
	// DefaultConfigFile is the config file looked up in the project directory
	DefaultConfigFile = ".bugtrack.yaml"
	// DefaultTrackerType is used when no tracker is configured
	DefaultTrackerType = "fake"
	// DefaultTrackerTimeout bounds every tracker request
	DefaultTrackerTimeout = 30 * time.Second
	// DefaultCloseTransition is the Jira transition used to close issues
	DefaultCloseTransition = "Done"
	// DefaultDatabase is the MySQL database of the mysql tracker
	DefaultDatabase = "bugtrack"
	// DefaultIssueFile is the store of the file tracker, relative to the project
	DefaultIssueFile = "storage/issues.json"
	// DefaultLogDir is where the rotating log file is written, relative to the project
	DefaultLogDir = "storage/logs"
	// DefaultGitHubLabel marks issues opened by bugtrack on GitHub
	DefaultGitHubLabel = "bugtrack"
)

// DefaultPathsToIgnore are the directories skipped when scanning for traces
var DefaultPathsToIgnore = []string{
	DefaultResourcesDir,
	"videos",
	"node_modules",
	"vendor",
}
