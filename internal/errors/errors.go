package errors

import (
	"errors"
	"fmt"
)

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeRateLimited   ErrCode = "RATE_LIMITED"
	ErrCodeRequestFailed ErrCode = "REQUEST_FAILED"
	ErrCodeScrapeFailed  ErrCode = "SCRAPE_FAILED"
	ErrCodeNotFound      ErrCode = "NOT_FOUND"
	ErrCodeInvalidWindow ErrCode = "INVALID_WINDOW"
	ErrCodeBadRequest    ErrCode = "BAD_REQUEST"
	ErrCodeInternal      ErrCode = "INTERNAL_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewRateLimitedError creates an error for an exhausted API quota with no
// safe wait available. The message tells the caller to retry with a token.
func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message + " (supply a GitHub token to raise the rate limit)",
	}
}

// NewRequestFailedError creates an error for a non-retryable HTTP failure
func NewRequestFailedError(resource, repo string, status int) *AppError {
	return &AppError{
		Code:    ErrCodeRequestFailed,
		Message: fmt.Sprintf("%s request for %s failed with status %d", resource, repo, status),
	}
}

// NewScrapeFailedError creates an error for a missing page element or a
// render timeout, naming the selector that could not be resolved
func NewScrapeFailedError(selector string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeScrapeFailed,
		Message: fmt.Sprintf("expected page element %q not found", selector),
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewInvalidWindowError creates an error for a non-positive day count
func NewInvalidWindowError(days int) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidWindow,
		Message: fmt.Sprintf("report window must be a positive number of days, got %d", days),
	}
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the error code of err, or ErrCodeInternal when err is not
// an AppError
func CodeOf(err error) ErrCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	return CodeOf(err) == ErrCodeRateLimited
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsScrapeFailed checks if the error is a scrape failure
func IsScrapeFailed(err error) bool {
	return CodeOf(err) == ErrCodeScrapeFailed
}

// IsInvalidWindow checks if the error is an invalid window error
func IsInvalidWindow(err error) bool {
	return CodeOf(err) == ErrCodeInvalidWindow
}
