package client

import (
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents connection errors and timeouts.
	ErrorClassNetwork ErrorClass = "network"
)

// ClassifyStatus returns the error class of a non-success status code.
// Success codes (2xx) return "".
func ClassifyStatus(status int) ErrorClass {
	switch {
	case IsSuccess(status):
		return ""
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 500:
		return ErrorClassServer
	default:
		return ErrorClassClient
	}
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Body       []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// TransportError is a request that never produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s failed: %v", e.Endpoint, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// CheckResponse converts a non-2xx response into an *APIError.
func CheckResponse(resp *Response) error {
	if resp == nil || IsSuccess(resp.StatusCode) {
		return nil
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Class:      ClassifyStatus(resp.StatusCode),
		Body:       resp.Body,
	}
}
