package domain

// TestOutcome is what a test runner reports for one executed test method.
type TestOutcome struct {
	Application string            `json:"application" yaml:"application" validate:"required"`
	Environment string            `json:"environment" yaml:"environment" validate:"required"`
	Suite       string            `json:"suite" yaml:"suite" validate:"required"`
	TestName    string            `json:"test_name" yaml:"test_name" validate:"required"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Passed      bool              `json:"passed" yaml:"passed"`
	Steps       []TestStep        `json:"steps" yaml:"steps" validate:"dive"`
	Options     map[string]string `json:"options,omitempty" yaml:"options,omitempty"`

	// SourcePath is the trace file the outcome was read from.
	SourcePath string `json:"-" yaml:"-"`
}
