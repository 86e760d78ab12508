// Package storage keeps the report of the last sync run.
package storage

import (
	"time"

	"bugtrack/internal/config"
	"bugtrack/internal/domain"
)

// Storage persists and loads sync reports (e.g. for the report viewer).
type Storage interface {
	Save(decisions []domain.Decision, run Run) (*domain.SyncReport, error)
	Load() (*domain.SyncReport, error)
	// SaveOutput writes a full report (e.g. after reviewing decisions).
	SaveOutput(report *domain.SyncReport) error
}

// Run describes a sync run.
type Run struct {
	Tracker  string
	Duration time.Duration
	Workers  int
	DryRun   bool
	// Finished is the end of the run; zero means now.
	Finished time.Time
}

// JSONStorage stores the report in a JSON file at the configured report path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's report path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Path returns the report file.
func (s *JSONStorage) Path() string {
	return s.cfg.GetReportPath()
}

var _ Storage = (*JSONStorage)(nil)
