package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugtrack/internal/errors"
)

func TestConfig_GetOutputDir(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{
			name:     "relative to project",
			config:   &Config{ProjectPath: "/project", OutputDir: "test-output"},
			expected: "/project/test-output",
		},
		{
			name:     "absolute output dir",
			config:   &Config{ProjectPath: "/project", OutputDir: "/ci/out"},
			expected: "/ci/out",
		},
		{
			name:     "default path",
			config:   &Config{ProjectPath: ".", OutputDir: "."},
			expected: ".",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetOutputDir())
		})
	}
}

func TestConfig_GetReportPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"

	assert.Equal(t, "/project/storage/bugtrack-report.json", cfg.GetReportPath())
	assert.True(t, filepath.IsAbs(New().GetReportPath()))
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.Equal(t, DefaultTrackerType, cfg.Tracker.Type)
	assert.True(t, cfg.Archive)
	assert.Len(t, cfg.PathsToIgnore, len(DefaultPathsToIgnore))

	// the defaults slice must not be shared
	cfg.PathsToIgnore[0] = "changed"
	assert.NotEqual(t, "changed", DefaultPathsToIgnore[0])
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Workers: 8, OutputDir: "out", NoArchive: true, Verbose: true})

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.False(t, cfg.Archive)
	assert.True(t, cfg.Log.Verbose)

	cfg = New()
	cfg.ApplyFlags(Flags{})
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	assert.True(t, cfg.Archive)
}

func TestConfig_IssueOptions(t *testing.T) {
	cfg := New()
	cfg.Options = map[string]string{
		"assignee":                "you",
		"bugtracker.priority":     "P1",
		"Field.customfield_10001": "web",
	}

	opts := cfg.IssueOptions(map[string]string{"bugtracker.assignee": "you2"})

	assert.Equal(t, "you2", opts["assignee"])
	assert.Equal(t, "P1", opts["priority"])
	assert.Equal(t, "web", opts["field.customfield_10001"])
	assert.Len(t, opts, 3)
}

func TestOptionKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "Assignee", want: "assignee"},
		{key: " bugtracker.issueType ", want: "issuetype"},
		{key: "JIRA.Priority", want: "priority"},
		{key: "field.Sprint", want: "field.Sprint"},
		{key: "Field.CustomField_10001", want: "field.CustomField_10001"},
		{key: "BugTracker.jira.FIELD.Team", want: "field.Team"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, OptionKey(tt.key))
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		dir := t.TempDir()

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)
		assert.Equal(t, dir, cfg.ProjectPath)
		assert.Equal(t, DefaultTrackerType, cfg.Tracker.Type)
		assert.Equal(t, DefaultTrackerTimeout, cfg.Tracker.Timeout)
	})

	t.Run("reads project config file", func(t *testing.T) {
		dir := t.TempDir()
		content := `workers: 2
output_dir: results
tracker:
  type: jira
  url: https://jira.example.com
  project: QA
  timeout: 5s
options:
  assignee: qa-lead
  field.customfield_10001: web
  components: ui,api
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0o644))

		cfg, err := Load(dir, Flags{Workers: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Workers)
		assert.Equal(t, "results", cfg.OutputDir)
		assert.Equal(t, "jira", cfg.Tracker.Type)
		assert.Equal(t, "QA", cfg.Tracker.Project)
		assert.Equal(t, 5*time.Second, cfg.Tracker.Timeout)
		assert.Equal(t, "qa-lead", cfg.Options["assignee"])
		assert.Equal(t, "web", cfg.Options["field.customfield_10001"])
		assert.Equal(t, "ui,api", cfg.Options["components"])
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("tracker:\n  type: jira\n"), 0o644))
		t.Setenv("BUGTRACK_TRACKER_TYPE", "file")
		t.Setenv("BUGTRACK_TRACKER_TOKEN", "secret-token")

		cfg, err := Load(dir, Flags{})
		require.NoError(t, err)
		assert.Equal(t, "file", cfg.Tracker.Type)
		assert.Equal(t, "secret-token", cfg.Tracker.Token)
	})

	t.Run("invalid values are configuration errors", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte("workers: 0\n"), 0o644))

		_, err := Load(dir, Flags{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfiguration)
	})

	t.Run("explicit missing config file", func(t *testing.T) {
		_, err := Load(t.TempDir(), Flags{ConfigFile: "/non/existent/bugtrack.yaml"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrConfiguration)
	})
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Validate(nil), errors.ErrConfiguration)

	cfg := New()
	require.NoError(t, Validate(cfg))

	cfg.Log.Verbose, cfg.Log.Quiet = true, true
	assert.ErrorIs(t, Validate(cfg), errors.ErrConfiguration)

	cfg = New()
	cfg.Tracker.Type = ""
	assert.ErrorIs(t, Validate(cfg), errors.ErrConfiguration)

	cfg = New()
	cfg.Scheduler = "random"
	assert.ErrorIs(t, Validate(cfg), errors.ErrConfiguration)

	cfg.ApplyFlags(Flags{Scheduler: "round-robin"})
	require.NoError(t, Validate(cfg))
}
