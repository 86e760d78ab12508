package domain

import "time"

// IssueDateLayout is the layout of Issue.DateString.
const IssueDateLayout = "2006-01-02T15:04-0700"

// Issue is a tracker-agnostic bug tracker issue.
// Two issues with the same Summary are the same issue, whatever their ID.
type Issue struct {
	ID           string            `json:"id,omitempty"`
	Summary      string            `json:"summary"`
	Description  string            `json:"description"`
	TestName     string            `json:"test_name,omitempty"`
	FailingStep  *TestStep         `json:"failing_step,omitempty"`
	Assignee     string            `json:"assignee,omitempty"`
	Reporter     string            `json:"reporter,omitempty"`
	Priority     string            `json:"priority,omitempty"`
	IssueType    string            `json:"issue_type,omitempty"`
	Components   []string          `json:"components,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	Attachments  []Snapshot        `json:"attachments,omitempty"`

	// DetailedResult is the path of the zipped result folder, empty when
	// packaging was skipped or failed.
	DetailedResult string `json:"detailed_result,omitempty"`

	Closed bool `json:"closed,omitempty"`
}

// DateString formats CreatedAt for trackers that want a minute precision date.
func (i *Issue) DateString() string {
	return i.CreatedAt.Format(IssueDateLayout)
}

// Candidate is an issue built from a failing test, together with the
// position of its failure marker.
type Candidate struct {
	Issue Issue

	// StepIndex is the index of the failure marker in the step trace.
	StepIndex int
	// FailingStepName is the name of the step right before the marker.
	FailingStepName string
}
