package domain

import "time"

// Decision records what happened to one test outcome during a sync.
type Decision struct {
	TestName  string     `json:"test_name"`
	Suite     string     `json:"suite"`
	Summary   string     `json:"summary"`
	Passed    bool       `json:"passed"`
	Kind      ActionKind `json:"kind"`
	IssueID   string     `json:"issue_id,omitempty"`
	StepIndex int        `json:"step_index,omitempty"`
	Message   string     `json:"message,omitempty"`
	Archive   string     `json:"archive,omitempty"`
	Error     string     `json:"error,omitempty"`
	Source    string     `json:"source,omitempty"`

	// Reviewed is set from the report viewer.
	Reviewed bool `json:"reviewed,omitempty"`

	Duration time.Duration `json:"-"`
}

// Failed reports whether the decision could not be carried out.
func (d Decision) Failed() bool {
	return d.Error != ""
}

// SyncMeta contains counters about a sync run.
type SyncMeta struct {
	Tracker         string  `json:"tracker"`
	TotalOutcomes   int     `json:"total_outcomes"`
	FailedOutcomes  int     `json:"failed_outcomes"`
	PassedOutcomes  int     `json:"passed_outcomes"`
	Created         int     `json:"created"`
	Updated         int     `json:"updated"`
	Closed          int     `json:"closed"`
	Unchanged       int     `json:"unchanged"`
	Errors          int     `json:"errors"`
	DryRun          bool    `json:"dry_run,omitempty"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Workers         int     `json:"workers"`
	Timestamp       string  `json:"timestamp"`
}

// SyncReport is the persisted result of a sync run.
type SyncReport struct {
	Meta      SyncMeta   `json:"meta"`
	Decisions []Decision `json:"decisions"`
}
