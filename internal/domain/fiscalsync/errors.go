package fiscalsync

import (
	"errors"
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrNotImplemented     = errors.New("fiscalsync: operation not implemented")
	ErrImportInProgress   = errors.New("fiscalsync: import already in progress")
	ErrMissingCredential  = errors.New("fiscalsync: api key not found")
	ErrNotLinked          = errors.New("fiscalsync: record has no remote id")
	ErrUnexpectedResponse = errors.New("fiscalsync: unexpected provider response")
	ErrUnknownEntity      = errors.New("fiscalsync: unknown entity")
	ErrInvalidTransition  = errors.New("fiscalsync: invalid document status transition")
)

// Error codes shared with the HTTP layer.
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeRemoteService = "REMOTE_SERVICE_ERROR"
	CodeValidation    = "VALIDATION_ERROR"
	CodeIllegalState  = "INVALID_STATE"
)

// CodedError is implemented by every error of the sync taxonomy.
type CodedError interface {
	error
	Code() string
}

// ErrorCode returns the taxonomy code carried by err, or "" when err is not
// part of the taxonomy.
func ErrorCode(err error) string {
	var coded CodedError
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// ---------------------------------------------------------------------------
// ConfigurationError
// ---------------------------------------------------------------------------

// ConfigurationError reports that no usable credential could be resolved.
// Operations failing with it never reached the network.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func (e *ConfigurationError) Code() string { return CodeConfiguration }

func (e *ConfigurationError) Unwrap() error { return ErrMissingCredential }

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// RemoteServiceError
// ---------------------------------------------------------------------------

// RemoteServiceError is returned when the provider answered with a non-2xx
// status or could not be reached at all.
type RemoteServiceError struct {
	StatusCode int
	Codes      []string
	Messages   []string
	Cause      error
}

func (e *RemoteServiceError) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, ", ")
	}
	if e.Cause != nil {
		return "remote service unavailable: " + e.Cause.Error()
	}
	return fmt.Sprintf("remote service returned status %d", e.StatusCode)
}

func (e *RemoteServiceError) Code() string { return CodeRemoteService }

func (e *RemoteServiceError) Unwrap() error { return e.Cause }

// HasCode reports whether the provider returned the given error code.
func (e *RemoteServiceError) HasCode(code string) bool {
	for _, c := range e.Codes {
		if c == code {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// ValidationError
// ---------------------------------------------------------------------------

// ValidationError reports a failed local precondition, or a remote create
// that was rejected.
type ValidationError struct {
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Code() string { return CodeValidation }

func (e *ValidationError) Unwrap() error { return e.Cause }

// NewValidationError builds a ValidationError.
func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}

// ---------------------------------------------------------------------------
// IllegalStateError
// ---------------------------------------------------------------------------

// IllegalStateError reports an operation that is not allowed in the
// entity's current state.
type IllegalStateError struct {
	Op      string
	Message string
	Cause   error
}

func (e *IllegalStateError) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return e.Op + ": " + e.Message
}

func (e *IllegalStateError) Code() string { return CodeIllegalState }

func (e *IllegalStateError) Unwrap() error { return e.Cause }

// NewIllegalStateError builds an IllegalStateError.
func NewIllegalStateError(op, message string, cause error) *IllegalStateError {
	return &IllegalStateError{Op: op, Message: message, Cause: cause}
}

// NotImplemented reports an adapter operation the entity type does not
// support.
func NotImplemented(entity, op string) error {
	return &IllegalStateError{
		Op:      op,
		Message: fmt.Sprintf("%s not implemented for %s", op, entity),
		Cause:   ErrNotImplemented,
	}
}
