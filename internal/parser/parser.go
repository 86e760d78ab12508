// Package parser reads the trace files written by test runners.
package parser

import "bugtrack/internal/domain"

// Parser decodes one trace file into a test outcome.
type Parser interface {
	Parse(path string) (*domain.TestOutcome, error)
}
