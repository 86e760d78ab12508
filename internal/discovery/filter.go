package discovery

import (
	"path/filepath"
	"strings"

	"bugtrack/internal/domain"
)

// Filter filters traces and outcomes by test name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterOutcomes keeps the outcomes whose test name matches pattern.
// Supports patterns like "*Login" or "*Payment*".
func (f *Filter) FilterOutcomes(outcomes []domain.TestOutcome, pattern string) []domain.TestOutcome {
	if pattern == "" {
		return outcomes
	}

	var filtered []domain.TestOutcome
	for _, o := range outcomes {
		if Match(o.TestName, pattern) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// Match reports whether name matches pattern. Wildcard patterns go through
// filepath.Match first, then fall back to an ordered substring match so that
// "*Payment*" finds "testPaymentRefund". A pattern without wildcards is a
// substring match.
func Match(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") {
		rest := name
		found := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
			found = true
		}
		// Ensure at least one non-empty part exists
		return found
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
