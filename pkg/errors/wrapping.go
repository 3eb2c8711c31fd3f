package errors

import (
	"fmt"
)

// Wrap adds context to an error. Classification is preserved: Classify and
// the message/field derivations inspect the whole chain, so wrapping never
// changes a failure's category.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
