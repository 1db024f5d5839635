package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeOpen       ErrorType = "open"
	ErrorTypeWrite      ErrorType = "write"
	ErrorTypeRead       ErrorType = "read"
	ErrorTypeStat       ErrorType = "stat"
	ErrorTypeMkdir      ErrorType = "mkdir"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeParse      ErrorType = "parse"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// FSError represents a file bridge error with context
type FSError struct {
	Type    ErrorType
	Message string
	Err     error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *FSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *FSError) Unwrap() error {
	return e.Err
}

// WithContext adds context to the error
func (e *FSError) WithContext(key string, value interface{}) *FSError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new FSError
func New(errType ErrorType, message string) *FSError {
	return &FSError{
		Type:    errType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error
func Wrap(err error, errType ErrorType, message string) *FSError {
	return &FSError{
		Type:    errType,
		Message: message,
		Err:     err,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the kind of the outermost FSError in err's chain,
// ErrorTypeUnknown for foreign errors and "" for nil.
func TypeOf(err error) ErrorType {
	if err == nil {
		return ""
	}
	var fe *FSError
	if stderrors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}

// IsNotFound reports whether err describes a missing path.
func IsNotFound(err error) bool {
	return TypeOf(err) == ErrorTypeNotFound || stderrors.Is(err, fs.ErrNotExist)
}

// OpenError wraps a failure to open or create a file. A missing path is
// classified as not_found.
func OpenError(err error, path string) *FSError {
	t := ErrorTypeOpen
	if stderrors.Is(err, fs.ErrNotExist) {
		t = ErrorTypeNotFound
	}
	return Wrap(err, t, "failed to open file").WithContext("path", path)
}

// StatError wraps a failed stat. A missing path is classified as not_found.
func StatError(err error, path string) *FSError {
	t := ErrorTypeStat
	if stderrors.Is(err, fs.ErrNotExist) {
		t = ErrorTypeNotFound
	}
	return Wrap(err, t, "failed to stat path").WithContext("path", path)
}

// ShortWriteError reports a write that stored fewer bytes than requested
func ShortWriteError(path string, written, want int) *FSError {
	return New(ErrorTypeWrite, fmt.Sprintf("short write: %d of %d bytes", written, want)).
		WithContext("path", path).
		WithContext("written", written).
		WithContext("want", want)
}

// ConfigError represents a configuration error
func ConfigError(message string) *FSError {
	return New(ErrorTypeConfig, message)
}

// ConfigErrorf creates a formatted configuration error
func ConfigErrorf(format string, args ...interface{}) *FSError {
	return New(ErrorTypeConfig, fmt.Sprintf(format, args...))
}

// ParseError represents a parsing error
func ParseError(message string) *FSError {
	return New(ErrorTypeParse, message)
}

// ParseErrorf creates a formatted parsing error
func ParseErrorf(format string, args ...interface{}) *FSError {
	return New(ErrorTypeParse, fmt.Sprintf(format, args...))
}

// ValidationError represents a validation error
func ValidationError(message string) *FSError {
	return New(ErrorTypeValidation, message)
}

// ValidationErrorf creates a formatted validation error
func ValidationErrorf(format string, args ...interface{}) *FSError {
	return New(ErrorTypeValidation, fmt.Sprintf(format, args...))
}

// ConflictErrorf reports a path occupied by something of the wrong kind
func ConflictErrorf(format string, args ...interface{}) *FSError {
	return New(ErrorTypeConflict, fmt.Sprintf(format, args...))
}
