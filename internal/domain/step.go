package domain

import (
	"fmt"
	"strings"
	"time"
)

// FailureMarkerPrefix starts the name of the synthetic last step that holds
// the failure of a test.
const FailureMarkerPrefix = "Test end"

// Snapshot references a screenshot captured during a step.
// Paths are relative to the output root of the run.
type Snapshot struct {
	Title          string `json:"title" yaml:"title"`
	Location       string `json:"location,omitempty" yaml:"location,omitempty"`
	HTMLSourcePath string `json:"html_source_path,omitempty" yaml:"html_source_path,omitempty"`
	ImagePath      string `json:"image_path,omitempty" yaml:"image_path,omitempty"`
}

// TestAction is one action or message logged inside a step.
type TestAction struct {
	Name   string `json:"name" yaml:"name"`
	Failed bool   `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// TestStep is one executed step of a test scenario.
type TestStep struct {
	Name      string        `json:"name" yaml:"name" validate:"required"`
	Failed    bool          `json:"failed" yaml:"failed"`
	Actions   []TestAction  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Snapshots []Snapshot    `json:"snapshots,omitempty" yaml:"snapshots,omitempty"`
	Duration  time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// IsFailureMarker reports whether the step is the "Test end" step.
func (s TestStep) IsFailureMarker() bool {
	return strings.HasPrefix(s.Name, FailureMarkerPrefix)
}

// String renders the step the way it appears in issue descriptions.
func (s TestStep) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step %s", s.Name)
	for _, a := range s.Actions {
		b.WriteString("\n  - ")
		b.WriteString(a.Name)
		if a.Failed {
			b.WriteString(" (KO)")
		}
	}
	for _, snap := range s.Snapshots {
		b.WriteString("\n  Output: ")
		b.WriteString(snap.Title)
	}
	return b.String()
}
