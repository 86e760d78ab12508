package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTestStep_IsFailureMarker(t *testing.T) {
	tests := []struct {
		name     string
		step     TestStep
		expected bool
	}{
		{name: "marker", step: TestStep{Name: "Test end"}, expected: true},
		{name: "marker with suffix", step: TestStep{Name: "Test end: exception"}, expected: true},
		{name: "regular step", step: TestStep{Name: "login"}, expected: false},
		{name: "marker not as prefix", step: TestStep{Name: "before Test end"}, expected: false},
		{name: "lower case", step: TestStep{Name: "test end"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.step.IsFailureMarker())
		})
	}
}

func TestTestStep_String(t *testing.T) {
	step := TestStep{
		Name: "open page",
		Actions: []TestAction{
			{Name: "click button"},
			{Name: "check title", Failed: true},
		},
		Snapshots: []Snapshot{{Title: "home", ImagePath: "screenshots/home.png"}},
	}

	assert.Equal(t, "Step open page\n  - click button\n  - check title (KO)\n  Output: home", step.String())
	assert.Equal(t, "Step empty", TestStep{Name: "empty"}.String())
}
