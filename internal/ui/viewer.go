package ui

import "bugtrack/internal/domain"

// Viewer displays a sync report in an interactive TUI
type Viewer interface {
	View(report *domain.SyncReport) error
}
