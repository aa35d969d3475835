package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"
	ErrCodeInvalidWindow   ErrorCode = "INVALID_WINDOW"

	// Credential decoding
	ErrCodeMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrCodeMissingField     ErrorCode = "MISSING_FIELD"

	// Credential trust (session credential registry)
	ErrCodeStaleCredential    ErrorCode = "STALE_CREDENTIAL"
	ErrCodeExpiredCredential  ErrorCode = "EXPIRED_CREDENTIAL"
	ErrCodeCredentialNotFound ErrorCode = "CREDENTIAL_NOT_FOUND"

	// Gate-pass lifecycle
	ErrCodeCooldownActive    ErrorCode = "COOLDOWN_ACTIVE"
	ErrCodeNoActiveFacility  ErrorCode = "NO_ACTIVE_FACILITY"
	ErrCodeActiveRequest     ErrorCode = "ACTIVE_REQUEST_EXISTS"
	ErrCodeNotPending        ErrorCode = "NOT_PENDING"
	ErrCodeNoApprovedRequest ErrorCode = "NO_APPROVED_REQUEST"
	ErrCodeNoAwaitingReturn  ErrorCode = "NO_AWAITING_RETURN"
	ErrCodeWrongFacility     ErrorCode = "WRONG_FACILITY"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabase ErrorCode = "DATABASE_ERROR"
	ErrCodeExternal ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// AppError is a structured error that can be returned to clients
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

func InvalidWindow() *AppError {
	return New(ErrCodeInvalidWindow, "Window end must be after window start")
}

func MalformedPayload(cause error) *AppError {
	return Wrap(ErrCodeMalformedPayload, "Credential payload is not well-formed", cause)
}

func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Credential is missing required field: %s", field))
}

func StaleCredential() *AppError {
	return New(ErrCodeStaleCredential, "Credential has been superseded, please rescan")
}

func ExpiredCredential() *AppError {
	return New(ErrCodeExpiredCredential, "Credential has expired, please rescan")
}

func CredentialNotFound() *AppError {
	return New(ErrCodeCredentialNotFound, "No credential is registered for this session")
}

func CooldownActive(remaining time.Duration) *AppError {
	return New(ErrCodeCooldownActive, "A recent rejection is still cooling down").
		WithDetails(map[string]any{"retryAfterSeconds": int(remaining.Seconds())})
}

func NoActiveFacility() *AppError {
	return New(ErrCodeNoActiveFacility, "Person has no active facility session")
}

func ActiveRequestExists() *AppError {
	return New(ErrCodeActiveRequest, "An active gate-pass request already exists")
}

func NotPending() *AppError {
	return New(ErrCodeNotPending, "Request is no longer pending")
}

func NoApprovedRequest() *AppError {
	return New(ErrCodeNoApprovedRequest, "No approved request is awaiting exit")
}

func NoAwaitingReturn() *AppError {
	return New(ErrCodeNoAwaitingReturn, "No request is awaiting return")
}

func WrongFacility() *AppError {
	return New(ErrCodeWrongFacility, "Person is not bound to this facility")
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Database(cause error) *AppError {
	return Wrap(ErrCodeDatabase, "Database error", cause)
}

func External(service string, cause error) *AppError {
	return Wrap(ErrCodeExternal, fmt.Sprintf("External service error: %s", service), cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}
