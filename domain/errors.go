package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNetworkUnavailable  ErrorCode = "NETWORK_UNAVAILABLE"
	ErrCodeNotFound            ErrorCode = "NOT_FOUND"
	ErrCodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidInviteCode   ErrorCode = "INVALID_INVITE_CODE"
	ErrCodeMalformedResponse   ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeInvalid             ErrorCode = "INVALID"
	ErrCodeForbidden           ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrCodeInsufficientCredits ErrorCode = "INSUFFICIENT_CREDITS"
	ErrCodeInternal            ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrNetworkUnavailable  = NewError(ErrCodeNetworkUnavailable, "backend unreachable")
	ErrNotFound            = NewError(ErrCodeNotFound, "resource not found")
	ErrInvalidCredentials  = NewError(ErrCodeInvalidCredentials, "invalid email or password")
	ErrInvalidInviteCode   = NewError(ErrCodeInvalidInviteCode, "invalid invite code")
	ErrMalformedResponse   = NewError(ErrCodeMalformedResponse, "malformed backend response")
	ErrInvalidPayload      = NewError(ErrCodeInvalid, "invalid payload")
	ErrNotAuthenticated    = NewError(ErrCodeUnauthorized, "no active session")
	ErrEmployeeOnly        = NewError(ErrCodeForbidden, "operation requires an employee identity")
	ErrCompanyOnly         = NewError(ErrCodeForbidden, "operation requires a company identity")
	ErrInsufficientCredits = NewError(ErrCodeInsufficientCredits, "insufficient credits")
	ErrBenefitNotFound     = NewError(ErrCodeNotFound, "benefit not found")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// Recoverable reports whether err is one of the failures the client absorbs
// by switching to the fallback dataset.
func Recoverable(err error) bool {
	return IsDomainError(err, ErrCodeNetworkUnavailable) ||
		IsDomainError(err, ErrCodeNotFound) ||
		IsDomainError(err, ErrCodeMalformedResponse)
}

// ErrSessionNotFound reports that durable storage holds no identity.
var ErrSessionNotFound = NewError(ErrCodeNotFound, "no persisted session")
