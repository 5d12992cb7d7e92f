package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Predefined error codes.
//
// The non-fatal conditions of the pipeline (a window with no scenes, a pixel
// with fewer than two observations, a fully tied rank test) are encoded in
// data as absent windows and masked pixels, and never surface as errors.
const (
	CodeConfigInvalid    = "CONFIG_INVALID"
	CodeStoreError       = "STORE_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeSubstrateFailure = "SUBSTRATE_FAILURE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func StoreError(message string) *AppError {
	return New(CodeStoreError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// SubstrateFailure marks a fatal failure of the external compute or storage
// substrate. It carries the failing stage, and the tile when the failure is
// tile-scoped (tile < 0 means the whole stage), so the caller can retry the
// exact unit of work. No partial product is ever published past one.
func SubstrateFailure(stage string, tile int, cause error) *AppError {
	msg := fmt.Sprintf("substrate failure in stage %q", stage)
	if tile >= 0 {
		msg = fmt.Sprintf("substrate failure in stage %q (tile %d)", stage, tile)
	}
	return &AppError{
		Code:    CodeSubstrateFailure,
		Message: msg,
		Cause:   cause,
	}
}
