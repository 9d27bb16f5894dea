package dto

import "net/http"

// Error codes returned by the API.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown        = "ERR_UNKNOWN"
	ErrCodeInternal       = "ERR_INTERNAL"
	ErrCodeNotImplemented = "ERR_NOT_IMPLEMENTED"
)

// Request error codes
const (
	// ErrCodeValidation is used when request binding fails
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Synchronization error codes
const (
	// ErrCodeConfiguration is used when no provider key could be resolved
	ErrCodeConfiguration = "ERR_CONFIGURATION"
	// ErrCodeRemoteService is used when the provider failed or was unreachable
	ErrCodeRemoteService = "ERR_REMOTE_SERVICE"
	// ErrCodeRejected is used when a local precondition or a remote create failed
	ErrCodeRejected = "ERR_REJECTED"
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeImportInProgress is used when another import holds the lock
	ErrCodeImportInProgress = "ERR_IMPORT_IN_PROGRESS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:        http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeNotImplemented: http.StatusNotImplemented,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeConfiguration:    http.StatusPreconditionFailed,
	ErrCodeRemoteService:    http.StatusBadGateway,
	ErrCodeRejected:         http.StatusUnprocessableEntity,
	ErrCodeInvalidState:     http.StatusConflict,
	ErrCodeImportInProgress: http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_TENANT":       ErrCodeInvalidInput,
	"INVALID_KIND":         ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONFIGURATION_ERROR":  ErrCodeConfiguration,
	"REMOTE_SERVICE_ERROR": ErrCodeRemoteService,
	"VALIDATION_ERROR":     ErrCodeRejected,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
