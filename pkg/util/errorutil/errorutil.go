package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes returned in the "code" field of error payloads.
const (
	CodeValidation        = "VALIDATION_FAILED"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeAccountDenied     = "ACCOUNT_DENIED"
	CodeVisitorCode       = "VISITOR_CODE_INVALID"
	CodeTooManyAttempts   = "TOO_MANY_ATTEMPTS"
	CodeInternal          = "INTERNAL_ERROR"
	CodeUnavailable       = "DEPENDENCY_UNAVAILABLE"
	CodeRequestMalformed  = "BAD_REQUEST"
	CodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	CodeRouteNotFound     = "ROUTE_NOT_FOUND"
	CodeRequestTimeout    = "REQUEST_TIMEOUT"
	CodeUnexpectedFailure = "UNEXPECTED_FAILURE"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewAccountDenied reports a login attempt by an account an administrator rejected.
func NewAccountDenied(reason string) error {
	message := "Your application was denied by the administrator"
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return NewDomainError(CodeAccountDenied, message, http.StatusForbidden, map[string]any{"denied": true})
}

// NewVisitorCodeInvalid covers unknown, malformed and already consumed visitor codes alike.
func NewVisitorCodeInvalid(message string) error {
	return NewDomainError(CodeVisitorCode, message, http.StatusNotFound, nil)
}

func NewTooManyAttempts(message string) error {
	return NewDomainError(CodeTooManyAttempts, message, http.StatusTooManyRequests, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &DomainError{
			Code:       CodeNotFound,
			Message:    "resource not found",
			HTTPStatus: http.StatusNotFound,
			Details:    map[string]any{},
			Err:        err,
		}
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeForStatus picks a code for errors raised by the HTTP framework itself.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeRequestMalformed
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeRouteNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusRequestTimeout:
		return CodeRequestTimeout
	case http.StatusTooManyRequests:
		return CodeTooManyAttempts
	}
	if status >= http.StatusInternalServerError {
		return CodeInternal
	}
	return CodeUnexpectedFailure
}

func MapError(err error) error {
	return ToDomainError(err)
}
