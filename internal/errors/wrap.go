package errors

import "fmt"

// Wrap adds context to an error at a package boundary.
// It returns nil when err is nil so it can be used inline:
//
//	return errors.Wrap(err, "failed to query tracker")
//
// The chain is preserved, so errors.Is keeps working on the result.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Mark tags err with a sentinel so that errors.Is(result, sentinel) holds
// while the message of err stays readable. It returns nil when err is nil.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	if Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
