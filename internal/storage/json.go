package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bugtrack/internal/domain"
)

// NewReport builds the report of a run from its decisions.
func NewReport(decisions []domain.Decision, run Run) domain.SyncReport {
	finished := run.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	meta := domain.SyncMeta{
		Tracker:         run.Tracker,
		TotalOutcomes:   len(decisions),
		DryRun:          run.DryRun,
		Duration:        run.Duration.String(),
		DurationSeconds: run.Duration.Seconds(),
		Workers:         run.Workers,
		Timestamp:       finished.Format(time.RFC3339),
	}
	for _, d := range decisions {
		if d.Passed {
			meta.PassedOutcomes++
		} else {
			meta.FailedOutcomes++
		}
		if d.Failed() {
			meta.Errors++
			continue
		}
		switch d.Kind {
		case domain.ActionCreate:
			meta.Created++
		case domain.ActionUpdate:
			meta.Updated++
		case domain.ActionClose:
			meta.Closed++
		default:
			meta.Unchanged++
		}
	}
	if decisions == nil {
		decisions = []domain.Decision{}
	}
	return domain.SyncReport{Meta: meta, Decisions: decisions}
}

// Save builds the report of a run and writes it to the report file.
func (s *JSONStorage) Save(decisions []domain.Decision, run Run) (*domain.SyncReport, error) {
	report := NewReport(decisions, run)
	if err := s.SaveOutput(&report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Load reads the last report from the report file.
func (s *JSONStorage) Load() (*domain.SyncReport, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("read report file: %w", err)
	}
	var report domain.SyncReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}

// SaveOutput writes the full report to the report file.
func (s *JSONStorage) SaveOutput(report *domain.SyncReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := s.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
