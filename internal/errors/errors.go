// Package errors holds the sentinel errors used to categorize failures
// across bugtrack. Callers check them with errors.Is.
//
// This package must not import any other internal package.
package errors

import "errors"

var (
	// ErrConfiguration indicates an invalid or unknown configuration value,
	// such as an unknown tracker type. It is fatal at startup.
	ErrConfiguration = errors.New("configuration error")

	// ErrPackaging indicates that the detailed result archive could not be built.
	// The issue is still created, without the archive.
	ErrPackaging = errors.New("result packaging failed")

	// ErrTrackerCommunication indicates that a call to the issue tracker failed.
	ErrTrackerCommunication = errors.New("tracker communication failed")

	// ErrNoEvaluableFailure is returned when a step trace holds no failure marker,
	// or holds it as its first step. Nothing has to be reported.
	ErrNoEvaluableFailure = errors.New("no evaluable failure")

	// ErrIssueNotFound indicates that an issue id is unknown to the tracker.
	ErrIssueNotFound = errors.New("issue not found")

	// ErrInvalidTrace indicates a trace file that cannot be decoded or misses
	// identity fields.
	ErrInvalidTrace = errors.New("invalid trace")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
