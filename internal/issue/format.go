package issue

import (
	"fmt"
	"strings"

	"bugtrack/internal/domain"
)

const (
	summaryPattern = "[Selenium][%s][%s][%s] test %s KO"
	stepKOPattern  = "Step %d KO\n\n"
	stepInError    = "Step '%s' in error\n\n"
	detailsNote    = "For more details, see attached .zip file"

	// AnotherStepMessage prefixes the note added when a known issue fails on a new step.
	AnotherStepMessage = "Scenario fails on another step "
	// ClosingMessage is written when a test passes again.
	ClosingMessage = "Test is now OK"
)

// TestID identifies an issue lineage.
type TestID struct {
	Application string
	Environment string
	Suite       string
	TestName    string
}

// TestIDOf returns the identity of an outcome.
func TestIDOf(o domain.TestOutcome) TestID {
	return TestID{
		Application: o.Application,
		Environment: o.Environment,
		Suite:       o.Suite,
		TestName:    o.TestName,
	}
}

// Summary returns the deduplication key of the lineage, without accents.
func Summary(id TestID) string {
	return StripAccents(fmt.Sprintf(summaryPattern, id.Application, id.Environment, id.Suite, id.TestName))
}

// StepMarker returns the "Step k KO" header recorded for a failure at marker index k.
func StepMarker(k int) string {
	return fmt.Sprintf(stepKOPattern, k)
}

// FindFailureMarker returns the index of the first "Test end" step.
// ok is false when there is none, or when it is the first step: such a
// trace has no failing step to report.
func FindFailureMarker(steps []domain.TestStep) (k int, ok bool) {
	for i, step := range steps {
		if step.IsFailureMarker() {
			return i, i > 0
		}
	}
	return len(steps), false
}

// BuildDescription renders the description of a failure at marker index k.
// k must come from FindFailureMarker.
func BuildDescription(description string, steps []domain.TestStep, k int) string {
	var b strings.Builder
	if description != "" {
		b.WriteString(description)
		b.WriteString("\n\n")
	}
	failing := steps[k-1]
	b.WriteString(StepMarker(k))
	fmt.Fprintf(&b, stepInError, failing.Name)
	b.WriteString(failing.String())
	b.WriteString("\n\n")
	b.WriteString(steps[k].String())
	b.WriteString("\n\n")
	b.WriteString(detailsNote)
	return b.String()
}
