// Package errors provides unified error handling for the module.
// It implements structured error types with error codes, detail maps,
// and recoverable detection for stages that can skip failed records.
package errors
