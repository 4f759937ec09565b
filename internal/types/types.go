// Package types defines core data types and enums shared across the latex-builder tool.
package types

import (
	"errors"
	"time"
)

// CompileState describes where a compilation run is in its lifecycle.
type CompileState string

const (
	StateIdle      CompileState = "idle"
	StateLaunching CompileState = "launching"
	StateRunning   CompileState = "running"
	StateCompleted CompileState = "completed"
	StateFailed    CompileState = "failed"
	StateTimedOut  CompileState = "timed_out"
	StateCancelled CompileState = "cancelled"
)

// Terminal reports whether the state is one of the four end states.
func (s CompileState) Terminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateTimedOut, StateCancelled:
		return true
	}
	return false
}

// CompilationOutcome is the result of one latexmk invocation. It is produced
// by the process supervisor and consumed once by the reporting driver.
type CompilationOutcome struct {
	State      CompileState  `json:"state"`
	ExitCode   int           `json:"exit_code"`
	Stdout     string        `json:"stdout"`
	Stderr     string        `json:"stderr"`
	Duration   time.Duration `json:"duration"`
	PDFPath    string        `json:"pdf_path"`
	PDFCreated bool          `json:"pdf_created"`
}

// Success reports whether the compiler exited cleanly. A missing PDF does not
// downgrade a clean exit.
func (o *CompilationOutcome) Success() bool {
	return o.State == StateCompleted
}

// ErrorCode 错误代码枚举
type ErrorCode string

const (
	ErrMissingInput ErrorCode = "MISSING_INPUT"
	ErrToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	ErrToolFailed   ErrorCode = "TOOL_FAILED"
	ErrTimeout      ErrorCode = "TIMEOUT"
	ErrCancelled    ErrorCode = "CANCELLED"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) an AppError,
// returning ErrInternal otherwise.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrInternal
}
