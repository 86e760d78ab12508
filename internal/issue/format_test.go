package issue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"bugtrack/internal/domain"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		id   TestID
		want string
	}{
		{
			name: "plain",
			id:   TestID{Application: "App", Environment: "Env", Suite: "Suite", TestName: "testX"},
			want: "[Selenium][App][Env][Suite] test testX KO",
		},
		{
			name: "accents stripped",
			id:   TestID{Application: "Café", Environment: "Préprod", Suite: "Commande", TestName: "testÉté"},
			want: "[Selenium][Cafe][Preprod][Commande] test testEte KO",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.id))
			assert.Equal(t, Summary(tt.id), Summary(tt.id))
		})
	}
}

func TestTestIDOf(t *testing.T) {
	id := TestIDOf(domain.TestOutcome{Application: "A", Environment: "E", Suite: "S", TestName: "T", Passed: true})
	assert.Equal(t, TestID{Application: "A", Environment: "E", Suite: "S", TestName: "T"}, id)
}

func TestFindFailureMarker(t *testing.T) {
	tests := []struct {
		name   string
		steps  []string
		wantK  int
		wantOK bool
	}{
		{name: "no steps", steps: nil, wantK: 0, wantOK: false},
		{name: "no marker", steps: []string{"a", "b"}, wantK: 2, wantOK: false},
		{name: "marker first", steps: []string{"Test end", "a"}, wantK: 0, wantOK: false},
		{name: "marker last", steps: []string{"a", "b", "Test end"}, wantK: 2, wantOK: true},
		{name: "first marker wins", steps: []string{"a", "Test end: error", "Test end"}, wantK: 1, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := FindFailureMarker(stepsNamed(tt.steps...))
			assert.Equal(t, tt.wantK, k)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestBuildDescription(t *testing.T) {
	steps := []domain.TestStep{
		{Name: "stepA"},
		{Name: "stepB", Actions: []domain.TestAction{{Name: "click login", Failed: true}}},
		{Name: "Test end", Failed: true, Snapshots: []domain.Snapshot{{Title: "error page"}}},
	}

	want := "Step 2 KO\n\n" +
		"Step 'stepB' in error\n\n" +
		"Step stepB\n  - click login (KO)\n\n" +
		"Step Test end\n  Output: error page\n\n" +
		"For more details, see attached .zip file"
	assert.Equal(t, want, BuildDescription("", steps, 2))
	assert.Equal(t, "Checks the login\n\n"+want, BuildDescription("Checks the login", steps, 2))
}

func TestStepMarker(t *testing.T) {
	assert.Equal(t, "Step 3 KO\n\n", StepMarker(3))
}

func stepsNamed(names ...string) []domain.TestStep {
	steps := make([]domain.TestStep, len(names))
	for i, name := range names {
		steps[i] = domain.TestStep{Name: name, Failed: name == domain.FailureMarkerPrefix}
	}
	return steps
}
