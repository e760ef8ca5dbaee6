package util

import (
	"errors"
	"fmt"
	"net/http"
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

// NewConfigurationError marks a missing or invalid startup setting. Fatal;
// the process must not run partially configured.
func NewConfigurationError(setting string) error {
	return NewDomainError("CONFIGURATION_ERROR", fmt.Sprintf("required setting %s is missing", setting), http.StatusInternalServerError, map[string]any{"setting": setting})
}

// NewDuplicateTicket rejects a second open ticket for the same requester.
func NewDuplicateTicket(requesterID string) error {
	return NewDomainError("DUPLICATE_TICKET", "you already have an open ticket", http.StatusConflict, map[string]any{"requester_id": requesterID})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewExternalAPIError wraps a failed platform call. Logged and reported
// generically; never retried.
func NewExternalAPIError(operation string, err error) error {
	return &DomainError{
		Code:       "EXTERNAL_API_ERROR",
		Message:    fmt.Sprintf("platform call %s failed", operation),
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"operation": operation},
		Err:        err,
	}
}

// NewPersistenceError wraps a failed collection write. In-memory state stays
// authoritative for the process lifetime.
func NewPersistenceError(kind string, err error) error {
	return &DomainError{
		Code:       "PERSISTENCE_ERROR",
		Message:    fmt.Sprintf("failed to persist %s", kind),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"kind": kind},
		Err:        err,
	}
}

// NewStaleInteraction wraps a failed interaction response: the platform's
// response window has passed, so the reply must go into the channel instead.
func NewStaleInteraction(channelID string, err error) error {
	return &DomainError{
		Code:       "STALE_INTERACTION",
		Message:    "interaction response window expired",
		HTTPStatus: http.StatusGone,
		Details:    map[string]any{"channel_id": channelID},
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
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
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
