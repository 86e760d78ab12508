// Package logging builds the zerolog logger used by bugtrack and keeps
// tracker credentials out of log output.
package logging

import (
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

// RedactedValue replaces sensitive data.
const RedactedValue = "[REDACTED]"

var sensitivePatterns = []*regexp.Regexp{ //nolint:gochecknoglobals // compiled once
	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_, github_pat_)
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),
	regexp.MustCompile(`github_pat_[a-zA-Z0-9_]{20,}`),
	// Basic and Bearer authorization values
	regexp.MustCompile(`(?i)(basic|bearer)\s+[a-zA-Z0-9+/=_-]{12,}`),
	// user:password@ in DSNs and URLs
	regexp.MustCompile(`[^\s:/@]+:[^\s:/@]+@(tcp\(|[a-zA-Z0-9.-]+)`),
	// key=value secrets
	regexp.MustCompile(`(?i)(password|passwd|secret|token|api[_-]?key)\s*[:=]\s*["']?[^\s"',}]{4,}["']?`),
}

// ContainsSensitiveData reports whether s matches a sensitive pattern.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces every sensitive match in value with [REDACTED].
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName reports whether a field name holds a credential.
func IsSensitiveFieldName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range []string{"password", "passwd", "secret", "token", "authorization", "api_key", "apikey"} {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// SafeValue returns value, or [REDACTED] when the field or value is sensitive.
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// SensitiveDataHook flags log events whose message contains sensitive data.
// zerolog hooks cannot rewrite the message, the FilteringWriter does that.
type SensitiveDataHook struct{}

// Run implements zerolog.Hook.
func (SensitiveDataHook) Run(e *zerolog.Event, _ zerolog.Level, msg string) {
	if ContainsSensitiveData(msg) {
		e.Bool("contains_filtered_data", true)
	}
}

// FilteringWriter redacts sensitive data before it reaches the wrapped writer.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter wraps w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer. It reports len(p) on success so callers do not
// see a short write when redaction shortened the data.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := fw.w.Write([]byte(FilterSensitiveValue(string(p)))); err != nil {
		return 0, err
	}
	return len(p), nil
}
