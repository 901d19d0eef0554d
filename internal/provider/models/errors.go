package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common provider failures.
var (
	// Authentication/permission errors are fatal: the retry controller must
	// short-circuit instead of re-issuing the call.
	ErrAuthentication   = errors.New("authentication failed")
	ErrPermissionDenied = errors.New("permission denied")

	ErrRateLimit          = errors.New("rate limit exceeded")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrContentBlocked     = errors.New("content blocked by safety filters")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrEmptyStream        = errors.New("stream closed without content")
	ErrNotSupported       = errors.New("operation not supported by this backend")
)

// ErrorCode classifies a provider failure.
type ErrorCode string

const (
	ErrorCodeAuth           ErrorCode = "authentication_failed"
	ErrorCodePermission     ErrorCode = "permission_denied"
	ErrorCodeRateLimit      ErrorCode = "rate_limit"
	ErrorCodeQuota          ErrorCode = "quota_exceeded"
	ErrorCodeContentBlocked ErrorCode = "content_blocked"
	ErrorCodeUnavailable    ErrorCode = "service_unavailable"
	ErrorCodeUnsupported    ErrorCode = "not_supported"
	ErrorCodeUnknown        ErrorCode = "unknown"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Code       ErrorCode
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether err belongs to the permission/authorization class
// that must bypass the retry loop entirely.
func IsFatal(err error) bool {
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrPermissionDenied) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code == ErrorCodeAuth || pe.Code == ErrorCodePermission
	}
	return false
}
