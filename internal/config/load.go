package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"bugtrack/internal/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BUGTRACK"

// keyDelimiter replaces viper's "." so that option keys such as
// "field.customfield_10001" stay flat.
const keyDelimiter = "::"

// Load reads configuration with the following precedence (highest first):
//  1. BUGTRACK_* environment variables, after loading <project>/.env
//  2. the config file (flags.ConfigFile, or <project>/.bugtrack.yaml)
//  3. built-in defaults
//
// Flag overrides are applied on top. A missing config file is not an error.
func Load(projectPath string, flags Flags) (*Config, error) {
	if projectPath == "" {
		projectPath = DefaultProjectPath
	}

	// .env file might not exist, that's okay - use environment variables
	_ = godotenv.Load(filepath.Join(projectPath, ".env"))

	v := newViper()

	configFile := flags.ConfigFile
	if configFile == "" {
		candidate := filepath.Join(projectPath, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
			return nil, errors.Mark(errors.Wrapf(err, "read config file %s", configFile), errors.ErrConfiguration)
		}
	}

	cfg := New()
	if err := v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode config"), errors.ErrConfiguration)
	}
	cfg.ProjectPath = projectPath
	cfg.ApplyFlags(flags)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so that AutomaticEnv can resolve it.
func setDefaults(v *viper.Viper) {
	d := New()
	key := func(parts ...string) string { return strings.Join(parts, keyDelimiter) }

	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("resources_dir", d.ResourcesDir)
	v.SetDefault("report_dir", d.ReportDir)
	v.SetDefault("report_file", d.ReportFile)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("scheduler", d.Scheduler)
	v.SetDefault("archive", d.Archive)
	v.SetDefault("paths_to_ignore", d.PathsToIgnore)

	v.SetDefault(key("tracker", "type"), d.Tracker.Type)
	v.SetDefault(key("tracker", "url"), "")
	v.SetDefault(key("tracker", "project"), "")
	v.SetDefault(key("tracker", "user"), "")
	v.SetDefault(key("tracker", "password"), "")
	v.SetDefault(key("tracker", "token"), "")
	v.SetDefault(key("tracker", "timeout"), d.Tracker.Timeout)
	v.SetDefault(key("tracker", "close_transition"), d.Tracker.CloseTransition)
	v.SetDefault(key("tracker", "label"), d.Tracker.Label)
	v.SetDefault(key("tracker", "host"), d.Tracker.Host)
	v.SetDefault(key("tracker", "port"), d.Tracker.Port)
	v.SetDefault(key("tracker", "database"), d.Tracker.Database)
	v.SetDefault(key("tracker", "path"), d.Tracker.Path)

	v.SetDefault(key("log", "dir"), d.Log.Dir)
	v.SetDefault(key("log", "verbose"), false)
	v.SetDefault(key("log", "quiet"), false)
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// Validate checks struct constraints of the configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Mark(errors.New("config is nil"), errors.ErrConfiguration)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid configuration"), errors.ErrConfiguration)
	}
	if cfg.Log.Verbose && cfg.Log.Quiet {
		return errors.Mark(errors.New("verbose and quiet are mutually exclusive"), errors.ErrConfiguration)
	}
	return nil
}
