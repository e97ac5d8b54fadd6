package model

import (
	"fmt"
)

// NotFoundError is an error signaling that something was not found in the
// database
type NotFoundError string

// Error implements the error interface
func (e NotFoundError) Error() string {
	return string(e)
}

// NotFoundErrorFmt returns a NotFoundError from the passed format string and parameters
func NotFoundErrorFmt(format string, params ...any) NotFoundError {
	return NotFoundError(fmt.Sprintf(format, params...))
}

// AlreadyExistsError signals a unique constraint violation
type AlreadyExistsError string

// Error implements the error interface
func (e AlreadyExistsError) Error() string {
	return string(e)
}

// AlreadyExistsErrorFmt returns an AlreadyExistsError from the passed format string and parameters
func AlreadyExistsErrorFmt(format string, params ...any) AlreadyExistsError {
	return AlreadyExistsError(fmt.Sprintf(format, params...))
}

// ConflictError signals that the current state of a record forbids the
// requested change, e.g. a second active enrollment for the same pair.
type ConflictError string

// Error implements the error interface
func (e ConflictError) Error() string {
	return string(e)
}

// ConflictErrorFmt returns a ConflictError from the passed format string and parameters
func ConflictErrorFmt(format string, params ...any) ConflictError {
	return ConflictError(fmt.Sprintf(format, params...))
}

// ValidationError signals malformed input
type ValidationError string

// Error implements the error interface
func (e ValidationError) Error() string {
	return string(e)
}

// ValidationErrorFmt returns a ValidationError from the passed format string and parameters
func ValidationErrorFmt(format string, params ...any) ValidationError {
	return ValidationError(fmt.Sprintf(format, params...))
}
