package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"
	ErrPermission     ErrorCode = "PERMISSION"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Parse errors
	ErrVersionParse  ErrorCode = "VERSION_PARSE"
	ErrManifestParse ErrorCode = "MANIFEST_PARSE"
	ErrArchive       ErrorCode = "ARCHIVE"

	// Resolution errors
	ErrMissingDependency  ErrorCode = "MISSING_DEPENDENCY"
	ErrVersionMismatch    ErrorCode = "VERSION_MISMATCH"
	ErrCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	ErrFileConflict       ErrorCode = "FILE_CONFLICT"
	ErrResolution         ErrorCode = "RESOLUTION_ERROR"
	ErrNeedsConfirmation  ErrorCode = "NEEDS_CONFIRMATION"

	// Mod errors
	ErrModNotFound  ErrorCode = "MOD_NOT_FOUND"
	ErrModInstalled ErrorCode = "MOD_INSTALLED"
	ErrLedger       ErrorCode = "LEDGER"

	// Action errors
	ErrActionInvalid ErrorCode = "ACTION_INVALID"
	ErrActionExecute ErrorCode = "ACTION_EXECUTE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// Remote errors
	ErrRemote ErrorCode = "REMOTE"
)

// SilkError represents a structured error with code and details
type SilkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SilkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SilkError) Unwrap() error {
	return e.Wrapped
}

// Is matches any SilkError carrying the same code
func (e *SilkError) Is(target error) bool {
	var targetErr *SilkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SilkError with the given code and message
func New(code ErrorCode, message string) *SilkError {
	return &SilkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SilkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SilkError {
	return &SilkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SilkError
func Wrap(err error, code ErrorCode, message string) *SilkError {
	if err == nil {
		return nil
	}
	return &SilkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SilkError {
	if err == nil {
		return nil
	}
	return &SilkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SilkError) WithDetail(key string, value interface{}) *SilkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *SilkError) WithDetails(details map[string]interface{}) *SilkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var silkErr *SilkError
	if errors.As(err, &silkErr) {
		return silkErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SilkError
func GetErrorCode(err error) ErrorCode {
	var silkErr *SilkError
	if errors.As(err, &silkErr) {
		return silkErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a SilkError
func GetErrorDetails(err error) map[string]interface{} {
	var silkErr *SilkError
	if errors.As(err, &silkErr) {
		return silkErr.Details
	}
	return nil
}
