package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors (fatal, surfaced on first iteration)
const (
	// ErrCodeInvalidConfig indicates an operator was built with invalid arguments.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeUnsupportedType indicates a value type no column strategy can handle.
	ErrCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"
)

// Data errors
const (
	// ErrCodeShapeMismatch indicates a record disagrees with the arity, type,
	// or shape established by the first record of the stream.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
)

// Transform errors (recoverable: a map stage may skip the record)
const (
	// ErrCodeTransformFailed indicates a user transform returned an error.
	ErrCodeTransformFailed ErrorCode = "TRANSFORM_FAILED"
)

// Lifecycle errors
const (
	// ErrCodeSessionClosed indicates a pull on an iterator whose session was closed.
	ErrCodeSessionClosed ErrorCode = "SESSION_CLOSED"
	// ErrCodeSourceFailed indicates a leaf producer failed to yield.
	ErrCodeSourceFailed ErrorCode = "SOURCE_FAILED"
)

var recoverableCodes = map[ErrorCode]bool{
	ErrCodeTransformFailed: true,
	ErrCodeInvalidConfig:   false,
	ErrCodeShapeMismatch:   false,
	ErrCodeSourceFailed:    false,
}

// IsRecoverableCode returns true if the error code indicates an error that a
// stage configured to ignore errors may skip instead of failing the stream.
func IsRecoverableCode(code ErrorCode) bool {
	return recoverableCodes[code]
}
