package errors

import (
	"fmt"
)

// Error is the structured error type used throughout the module.
type Error struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Recoverable indicates whether a stage configured to ignore errors
	// may skip the offending record instead of failing the stream.
	Recoverable bool `json:"recoverable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with automatic recoverable detection.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:        code,
		Message:     message,
		Recoverable: IsRecoverableCode(code),
	}
}

// --- Common Error Constructors ---

// InvalidConfig creates a new Error for an operator built with an invalid option.
func InvalidConfig(option, reason string) *Error {
	details := make(map[string]any)
	if option != "" {
		details["option"] = option
	}
	return &Error{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s", reason),
		Recoverable: false, Details: details,
	}
}

// Validation creates a new Error for validation failures.
func Validation(message string) *Error {
	return &Error{
		Code: ErrCodeInvalidConfig, Message: message,
		Recoverable: false,
	}
}

// UnsupportedType creates a new Error for a value no column strategy can handle.
func UnsupportedType(position int, value any) *Error {
	return &Error{
		Code: ErrCodeUnsupportedType, Message: fmt.Sprintf("unsupported value type %T at tuple position %d", value, position),
		Recoverable: false,
		Details:     map[string]any{"position": position, "type": fmt.Sprintf("%T", value)},
	}
}

// ShapeMismatch creates a new Error for a record whose shape disagrees with
// the shape established by the first record of the stream.
func ShapeMismatch(position int, want, got []int) *Error {
	return &Error{
		Code: ErrCodeShapeMismatch, Message: fmt.Sprintf("shape mismatch at tuple position %d: want %v, got %v", position, want, got),
		Recoverable: false,
		Details:     map[string]any{"position": position, "want": fmt.Sprint(want), "got": fmt.Sprint(got)},
	}
}

// TypeMismatch creates a new Error for a record whose element type disagrees
// with the type established by the first record of the stream.
func TypeMismatch(position int, want, got string) *Error {
	return &Error{
		Code: ErrCodeShapeMismatch, Message: fmt.Sprintf("type mismatch at tuple position %d: want %s, got %s", position, want, got),
		Recoverable: false,
		Details:     map[string]any{"position": position, "want_type": want, "got_type": got},
	}
}

// ArityMismatch creates a new Error for a record whose arity disagrees with
// the arity established by the first record of the stream.
func ArityMismatch(want, got int) *Error {
	return &Error{
		Code: ErrCodeShapeMismatch, Message: fmt.Sprintf("record arity mismatch: want %d, got %d", want, got),
		Recoverable: false,
		Details:     map[string]any{"want": want, "got": got},
	}
}

// Transform creates a new Error for a user transform that returned an error.
func Transform(cause error) *Error {
	return &Error{
		Code: ErrCodeTransformFailed, Message: "transform failed",
		Recoverable: true, Cause: cause,
	}
}

// SessionClosed creates a new Error for a pull on a closed session.
func SessionClosed() *Error {
	return &Error{
		Code: ErrCodeSessionClosed, Message: "session is closed",
		Recoverable: false,
	}
}

// Source creates a new Error for a leaf producer that failed to yield.
func Source(cause error) *Error {
	return &Error{
		Code: ErrCodeSourceFailed, Message: "source failed",
		Recoverable: false, Cause: cause,
	}
}
