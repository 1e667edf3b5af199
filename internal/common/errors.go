package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Only ErrStageTimeout and ErrCollision surface as
// job-level failures; the rest are absorbed with degraded output.
var (
	// ErrStageTimeout: a watched file never reached a stable size. The file is
	// left in the watch location and may be retried.
	ErrStageTimeout = errors.New("file did not stabilize before timeout")

	// ErrCollision: the destination basename is already occupied. The move is
	// refused; remediation is up to an operator.
	ErrCollision = errors.New("destination name already occupied")

	// ErrRegeneration: a corrected output file could not be rebuilt. The
	// original file and already-extracted text are kept.
	ErrRegeneration = errors.New("could not regenerate corrected output")

	// ErrNoModel: no trained classifier artifact is available.
	ErrNoModel = errors.New("no trained classifier model available")

	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
)

// NewAppError builds an AppError wrapping cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError annotates err with message, passing nil through.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
