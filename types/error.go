package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode identifies the kind of failure surfaced by the provider layer.
type ErrorCode string

const (
	// ErrUnknownProvider is returned when a key is not registered in a family registry.
	ErrUnknownProvider ErrorCode = "UNKNOWN_PROVIDER"
	// ErrInvalidProvider is returned at registration time when a constructor's
	// product does not satisfy the family interface.
	ErrInvalidProvider ErrorCode = "INVALID_PROVIDER"
	// ErrUnsupportedCapability is returned when a capability method has no implementation.
	ErrUnsupportedCapability ErrorCode = "UNSUPPORTED_CAPABILITY"
	// ErrAdapterFailure covers every vendor call failure (network, auth, quota, decode).
	ErrAdapterFailure ErrorCode = "ADAPTER_FAILURE"
)

// Reason carries the vendor-level detail of an ADAPTER_FAILURE.
type Reason string

const (
	ReasonUnauthorized    Reason = "unauthorized"
	ReasonForbidden       Reason = "forbidden"
	ReasonRateLimited     Reason = "rate_limited"
	ReasonQuotaExceeded   Reason = "quota_exceeded"
	ReasonInvalidRequest  Reason = "invalid_request"
	ReasonModelOverloaded Reason = "model_overloaded"
	ReasonUpstreamError   Reason = "upstream_error"
	ReasonUpstreamTimeout Reason = "upstream_timeout"
	ReasonNetwork         Reason = "network"
	ReasonDecode          Reason = "decode"
	ReasonStorage         Reason = "storage"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Reason     Reason    `json:"reason,omitempty"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Retryable  bool      `json:"retryable"`
	Provider   string    `json:"provider,omitempty"`
	// Available lists the registered keys at the moment an UNKNOWN_PROVIDER was raised.
	Available []string `json:"available,omitempty"`
	Cause     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithRetryable marks the error as retryable.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// WithReason sets the vendor-level reason.
func (e *Error) WithReason(reason Reason) *Error {
	e.Reason = reason
	return e
}

// AsError extracts a *Error from anywhere in the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// =============================================================================
// Constructors
// =============================================================================

// UnknownProvider builds the error returned for an unregistered key.
// available is copied so later registrations do not alter the error.
func UnknownProvider(family, key string, available []string) *Error {
	list := append([]string(nil), available...)
	return &Error{
		Code: ErrUnknownProvider,
		Message: fmt.Sprintf("unknown %s provider %q. Available providers: %s",
			family, key, strings.Join(list, ", ")),
		Provider:  key,
		Available: list,
	}
}

// InvalidProvider builds the error returned when registration validation fails.
func InvalidProvider(family, key, detail string) *Error {
	return &Error{
		Code:     ErrInvalidProvider,
		Message:  fmt.Sprintf("invalid %s provider %q: %s", family, key, detail),
		Provider: key,
	}
}

// UnsupportedCapability builds the error returned by a capability with no implementation.
func UnsupportedCapability(provider, capability string) *Error {
	return &Error{
		Code:     ErrUnsupportedCapability,
		Message:  fmt.Sprintf("provider %q does not support %s", provider, capability),
		Provider: provider,
	}
}

// AdapterFailure wraps a vendor call failure.
func AdapterFailure(provider string, reason Reason, message string) *Error {
	return &Error{
		Code:     ErrAdapterFailure,
		Message:  message,
		Reason:   reason,
		Provider: provider,
	}
}

// FromHTTPStatus maps a vendor HTTP status to an ADAPTER_FAILURE with the
// matching reason and retry hint.
func FromHTTPStatus(provider string, status int, msg string) *Error {
	reason := ReasonUpstreamError
	retryable := status >= 500

	switch status {
	case http.StatusUnauthorized:
		reason = ReasonUnauthorized
	case http.StatusForbidden:
		reason = ReasonForbidden
	case http.StatusTooManyRequests:
		reason = ReasonRateLimited
		retryable = true
	case http.StatusBadRequest:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "quota") || strings.Contains(lower, "credit") {
			reason = ReasonQuotaExceeded
		} else {
			reason = ReasonInvalidRequest
		}
	case http.StatusPaymentRequired:
		reason = ReasonQuotaExceeded
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		reason = ReasonUpstreamTimeout
		retryable = true
	case 529:
		reason = ReasonModelOverloaded
		retryable = true
	}

	return AdapterFailure(provider, reason, msg).
		WithHTTPStatus(status).
		WithRetryable(retryable)
}

// FromTransport maps a client-side transport error (dial, TLS, context) to an ADAPTER_FAILURE.
func FromTransport(provider string, err error) *Error {
	reason := ReasonNetwork
	if errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonUpstreamTimeout
	}
	return AdapterFailure(provider, reason, "request failed").
		WithCause(err).
		WithHTTPStatus(http.StatusBadGateway).
		WithRetryable(!errors.Is(err, context.Canceled))
}
