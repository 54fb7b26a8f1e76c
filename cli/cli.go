// Package cli holds the one error type that belongs to the command-line
// driver itself, rather than to any library component: bad flag
// combinations, missing files, and other mistakes only the user (not a
// library caller) can make.
package cli

import "fmt"

// UserError reports a mistake in how the tool was invoked: mutually
// exclusive or missing flags, an invalid cut-mask, an unknown chromosome
// name, a nonexistent input file. It is always fatal, and is reported with
// a short message rather than a stack trace.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

// Errorf builds a UserError from a format string, mirroring errors.Errorf's
// call shape for the one error kind that intentionally carries no wrapped
// cause.
func Errorf(format string, args ...interface{}) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
