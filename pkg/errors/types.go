// Package errors provides typed errors for git-sense.
//
// This package defines domain-specific error types for each failure class the
// CLI can surface (configuration, GitHub authentication and authorization,
// rate limiting, missing repositories, the OAuth device flow, and the AI
// provider). All error types implement the standard error interface and
// support errors.Is() and errors.As() from the standard library and
// cockroachdb/errors.
package errors

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// ConfigError represents configuration-related errors: missing or invalid
// credentials, bad flag values, unusable config files.
type ConfigError struct {
	Field   string // Which config field or flag has the issue
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
	}
	return "config error: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewConfigErrorWithCause creates a new ConfigError with an underlying cause.
func NewConfigErrorWithCause(field, message string, cause error) *ConfigError {
	return &ConfigError{Field: field, Message: message, Cause: cause}
}

// AuthError is returned when GitHub rejects the credentials (HTTP 401) or
// when no token is available at all.
type AuthError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new AuthError.
func NewAuthError(message string) *AuthError {
	return &AuthError{Message: message}
}

// AccessDeniedError is a 403 that is not caused by rate limiting.
type AccessDeniedError struct {
	Message string // Message reported by GitHub
	Cause   error
}

// Error implements the error interface.
func (e *AccessDeniedError) Error() string {
	return "GitHub API access denied: " + e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AccessDeniedError) Unwrap() error {
	return e.Cause
}

// RateLimitError is a 403 caused by the GitHub API rate limit.
// Reset is zero when the response carried no reset header.
type RateLimitError struct {
	Reset time.Time
	Cause error
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.Reset.IsZero() {
		return "GitHub API rate limit reached. Try again later."
	}
	return fmt.Sprintf("GitHub API rate limit reached. Resets at %s. Try again later.", FormatResetTime(e.Reset))
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// FormatResetTime renders a rate limit reset time in the local time zone.
func FormatResetTime(t time.Time) string {
	return t.Local().Format("15:04:05")
}

// NotFoundError represents a 404 from GitHub.
type NotFoundError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message string, cause error) *NotFoundError {
	return &NotFoundError{Message: message, Cause: cause}
}

// DeviceFlowReason identifies how an OAuth device flow ended unsuccessfully.
type DeviceFlowReason string

const (
	// DeviceFlowExpired means the device code expired before authorization.
	DeviceFlowExpired DeviceFlowReason = "expired"
	// DeviceFlowDenied means the user declined the authorization request.
	DeviceFlowDenied DeviceFlowReason = "denied"
	// DeviceFlowProvider means the provider returned an unexpected error.
	DeviceFlowProvider DeviceFlowReason = "provider"
	// DeviceFlowTimeout means polling outlived the code's declared lifetime.
	DeviceFlowTimeout DeviceFlowReason = "timeout"
)

// DeviceFlowError represents a terminal failure of the OAuth device flow.
type DeviceFlowError struct {
	Reason  DeviceFlowReason
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DeviceFlowError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *DeviceFlowError) Unwrap() error {
	return e.Cause
}

// NewDeviceFlowError creates a new DeviceFlowError.
func NewDeviceFlowError(reason DeviceFlowReason, message string) *DeviceFlowError {
	return &DeviceFlowError{Reason: reason, Message: message}
}

// NewDeviceFlowErrorWithCause creates a new DeviceFlowError with an underlying cause.
func NewDeviceFlowErrorWithCause(reason DeviceFlowReason, message string, cause error) *DeviceFlowError {
	return &DeviceFlowError{Reason: reason, Message: message, Cause: cause}
}

// AIError represents AI provider errors.
type AIError struct {
	Provider   string // e.g., "anthropic"
	Operation  string // e.g., "StreamChat"
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *AIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("ai %s %s failed (HTTP %d): %s", e.Provider, e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ai %s %s failed: %s", e.Provider, e.Operation, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *AIError) Unwrap() error {
	return e.Cause
}

// NewAIError creates a new AIError.
func NewAIError(provider, operation, message string) *AIError {
	return &AIError{Provider: provider, Operation: operation, Message: message}
}

// NewAIErrorWithStatus creates a new AIError with HTTP status code.
func NewAIErrorWithStatus(provider, operation string, statusCode int, message string) *AIError {
	return &AIError{
		Provider:   provider,
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
	}
}

// NewAIErrorWithCause creates a new AIError with an underlying cause.
func NewAIErrorWithCause(provider, operation, message string, cause error) *AIError {
	return &AIError{
		Provider:  provider,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// IsConfigError checks if an error or any error in its chain is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsAuthError checks if an error or any error in its chain is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsRateLimitError checks if an error or any error in its chain is a RateLimitError.
func IsRateLimitError(err error) bool {
	var rlErr *RateLimitError
	return errors.As(err, &rlErr)
}

// IsNotFoundError checks if an error or any error in its chain is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
}

// IsDeviceFlowError checks if an error or any error in its chain is a DeviceFlowError.
func IsDeviceFlowError(err error) bool {
	var dfErr *DeviceFlowError
	return errors.As(err, &dfErr)
}

// IsAIError checks if an error or any error in its chain is an AIError.
func IsAIError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr)
}

// Re-export commonly used functions from cockroachdb/errors for convenience.
// This allows consumers to use gserrors.Wrap() instead of importing two packages.
var (
	// New creates a new error with the given message.
	New = errors.New

	// Newf creates a new error with formatted message.
	Newf = errors.Newf

	// Wrap wraps an error with additional context.
	Wrap = errors.Wrap

	// Wrapf wraps an error with formatted additional context.
	Wrapf = errors.Wrapf

	// Is reports whether any error in err's chain matches target.
	Is = errors.Is

	// As finds the first error in err's chain that matches target.
	As = errors.As

	// Cause returns the root cause of an error.
	Cause = errors.Cause
)
