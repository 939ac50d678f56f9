// Package errors provides custom error types for the chat API client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNoBaseURL       = errors.New("api base url is not configured")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoContent       = errors.New("no content in response")
	ErrInvalidChart    = errors.New("invalid chart payload")
	ErrNetwork         = errors.New("network error")
)

// APIError represents a non-success HTTP status from the chat endpoint
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithBody attaches a (truncated) response body for diagnostics
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 4096
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	e.Body = body
	return e
}

// NetworkError represents a transport failure (DNS, connection refused, reset...)
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// NewNetworkErrorWithEndpoint creates a new NetworkError
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// ChartError represents a malformed embedded chart payload
type ChartError struct {
	Message string
	Err     error
}

func (e *ChartError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chart payload: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("chart payload: %s", e.Message)
}

func (e *ChartError) Unwrap() error { return e.Err }

// Is allows comparison with sentinel errors
func (e *ChartError) Is(target error) bool {
	if target == ErrInvalidChart {
		return true
	}
	_, ok := target.(*ChartError)
	return ok
}

// NewChartError creates a new ChartError
func NewChartError(message string, err error) *ChartError {
	return &ChartError{Message: message, Err: err}
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsTimeoutError reports whether err is a timeout
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsParseError reports whether err is a malformed response body
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsChartError reports whether err is a malformed chart payload
func IsChartError(err error) bool {
	return errors.Is(err, ErrInvalidChart)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}
