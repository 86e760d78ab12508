package domain

// ActionKind tells what must change on the tracker.
type ActionKind string

const (
	ActionNone   ActionKind = "none"
	ActionCreate ActionKind = "create"
	ActionUpdate ActionKind = "update"
	ActionClose  ActionKind = "close"
)

// Action is the outcome of a lifecycle decision.
type Action struct {
	Kind    ActionKind
	Summary string

	// IssueID is the existing issue for update and close.
	IssueID string
	// Issue is the issue to submit for create.
	Issue *Issue

	// Message is the note appended on update, or the closing message.
	Message string
	// StepMarker is the "Step N KO" header recorded with an update so that a
	// later run failing on the same step is recognized.
	StepMarker  string
	Attachments []Snapshot
}

// NoOp returns an action that changes nothing.
func NoOp(summary string) Action {
	return Action{Kind: ActionNone, Summary: summary}
}
