package footballdata

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRequestBlocked is returned when the local request budget gate
	// refuses to spend upstream quota.
	ErrRequestBlocked = errors.New("request blocked: upstream budget exhausted")

	// ErrContextCancelled is returned when the context is cancelled while
	// waiting on an upstream call.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass represents a classification of upstream errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError represents an upstream transport failure with additional context.
// Absence of data (404-free empty lists, missing standings rows) is never an
// APIError; only the failure to retrieve data is.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("football-data %s error (status %d) on %s: %s: %v",
			e.Class, e.StatusCode, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("football-data %s error (status %d) on %s: %s",
		e.Class, e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status code for observability.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 429:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// IsTransportError reports whether err (or anything it wraps) is an upstream
// transport failure. Aggregation callers use this to distinguish "failed to
// retrieve" from "retrieved but absent".
func IsTransportError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
