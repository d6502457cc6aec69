package errors

import (
	stderrors "errors"
)

// IsError checks if an error is a structured Error.
func IsError(err error) bool {
	var e *Error
	return stderrors.As(err, &e)
}

// AsError converts an error to a structured Error if possible.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the error code carried by err, or the empty code if err is
// not a structured Error.
func CodeOf(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsRecoverable reports whether a stage configured to ignore errors may skip
// the record that produced err. Errors without a structured code are not
// recoverable.
func IsRecoverable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Recoverable
	}
	return false
}
