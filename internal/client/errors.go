package client

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is a local form check that failed before any request was sent.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidToken is a local rejection of text that is not a visitor code.
	ErrInvalidToken = errors.New("not a visitor code")
	// ErrVerificationFailed covers codes the server does not know and codes already used.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrSessionExpired means the server refused the bearer token; the session was torn down.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrAccountDenied is a login refused because an administrator denied the account.
	ErrAccountDenied = errors.New("account denied")
	// ErrNotPermitted means the current role surface does not include the action.
	ErrNotPermitted = errors.New("not permitted for this role")
	// ErrRejected is any other request the server refused.
	ErrRejected = errors.New("request rejected")
	// ErrTransport is a network failure or timeout; the outcome on the server is unknown.
	ErrTransport = errors.New("transport failure")
	// ErrBusy rejects a submission while the same action is still outstanding.
	ErrBusy = errors.New("a submission is already in progress")
)

// ValidationError names the offending field of a local check.
type ValidationError struct {
	Field   string
	Message string
	kind    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

// Is lets every ValidationError match ErrValidation, including token rejections.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message, kind: ErrValidation}
}

func invalidToken(message string) error {
	return &ValidationError{Field: "qrCode", Message: message, kind: ErrInvalidToken}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	kind    error
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind
}
