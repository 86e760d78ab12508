package cli

import "bugtrack/internal/config"

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	ConfigFile  string
	Verbose     bool
	Quiet       bool

	Workers   int
	Scheduler string
	Filter    string
	OutputDir string
	NoArchive bool
	DryRun    bool

	Fresh bool
	Stats bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Workers:    f.Workers,
		Scheduler:  f.Scheduler,
		Filter:     f.Filter,
		OutputDir:  f.OutputDir,
		NoArchive:  f.NoArchive,
		DryRun:     f.DryRun,
		ConfigFile: f.ConfigFile,
		Verbose:    f.Verbose,
		Quiet:      f.Quiet,
	}
}
