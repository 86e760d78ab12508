package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"bugtrack/internal/domain"
	"bugtrack/internal/errors"
)

// Trace file suffixes.
const (
	JSONSuffix = ".trace.json"
	YAMLSuffix = ".trace.yaml"
	YMLSuffix  = ".trace.yml"
)

// Suffixes lists every recognized trace file suffix.
func Suffixes() []string {
	return []string{JSONSuffix, YAMLSuffix, YMLSuffix}
}

// IsTrace reports whether path names a trace file.
func IsTrace(path string) bool {
	return TraceName(path) != ""
}

// TraceName returns the file name of path without its trace suffix, or ""
// when path is not a trace file.
func TraceName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, suffix := range Suffixes() {
		if strings.HasSuffix(lower, suffix) && len(base) > len(suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return ""
}

// TraceParser decodes JSON and YAML traces and validates them.
type TraceParser struct {
	validate *validator.Validate
}

// NewTraceParser creates a new TraceParser
func NewTraceParser() *TraceParser {
	return &TraceParser{validate: validator.New()}
}

// Parse reads the trace at path. The format follows the file suffix.
// Invalid documents are reported with ErrInvalidTrace.
func (p *TraceParser) Parse(path string) (*domain.TestOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading trace %s: %w", path, err)
	}
	outcome, err := p.Decode(path, data)
	if err != nil {
		return nil, err
	}
	outcome.SourcePath = path
	return outcome, nil
}

// Decode parses data as the trace named name.
func (p *TraceParser) Decode(name string, data []byte) (*domain.TestOutcome, error) {
	var outcome domain.TestOutcome

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, JSONSuffix):
		if err := json.Unmarshal(data, &outcome); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidTrace), "decode %s", name)
		}
	case strings.HasSuffix(lower, YAMLSuffix), strings.HasSuffix(lower, YMLSuffix):
		if err := yaml.Unmarshal(data, &outcome); err != nil {
			return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidTrace), "decode %s", name)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInvalidTrace, "%s is not a trace file", name)
	}

	if err := p.validate.Struct(&outcome); err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidTrace), "validate %s", name)
	}
	return &outcome, nil
}

// ParseAll parses every path. Traces that cannot be read are returned as
// errors next to the outcomes that could.
func (p *TraceParser) ParseAll(paths []string) ([]domain.TestOutcome, []error) {
	var (
		outcomes []domain.TestOutcome
		errs     []error
	)
	for _, path := range paths {
		outcome, err := p.Parse(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outcomes = append(outcomes, *outcome)
	}
	return outcomes, errs
}

// Counts returns the number of passed and failed outcomes.
func Counts(outcomes []domain.TestOutcome) (passed, failed int) {
	for _, o := range outcomes {
		if o.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

var _ Parser = (*TraceParser)(nil)
