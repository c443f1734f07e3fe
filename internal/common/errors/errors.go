// Package errors provides standardized error handling for the matching service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidWeights     ErrorCode = "INVALID_WEIGHTS"
	ErrCodeMissingCoordinates ErrorCode = "MISSING_COORDINATES"
	ErrCodeScoringFailed      ErrorCode = "SCORING_FAILED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"

	ErrCodeOrderNotFound        ErrorCode = "ORDER_NOT_FOUND"
	ErrCodeManufacturerNotFound ErrorCode = "MANUFACTURER_NOT_FOUND"
	ErrCodePoolLookupFailed     ErrorCode = "POOL_LOOKUP_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeCacheUnavailable         ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodePredictionTimeout        ErrorCode = "PREDICTION_TIMEOUT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// HasCode reports whether err is a *StandardError carrying the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// NewInvalidWeightsError creates a non-retryable configuration error.
// Raised at engine construction; the caller must fix its weight configuration.
func NewInvalidWeightsError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWeights,
		Message:   "Matching weights are invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCoordinatesError signals that a distance could not be computed
// because one of the points lacks coordinates. Recovered locally by the
// geographic scorer; never surfaced to callers as a hard failure.
func NewMissingCoordinatesError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCoordinates,
		Message:   "Coordinates unavailable for distance calculation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringFailedError wraps an unexpected per-candidate scoring failure.
func NewScoringFailedError(manufacturerID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "Candidate scoring failed",
		Details:   fmt.Sprintf("manufacturerId: %s, error: %v", manufacturerID, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"manufacturerId": manufacturerID},
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationFailedError creates a non-retryable input validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderNotFoundError creates a non-retryable lookup error.
func NewOrderNotFoundError(orderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderNotFound,
		Message:   "Order not found",
		Details:   fmt.Sprintf("orderId: %s", orderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewManufacturerNotFoundError creates a non-retryable lookup error.
func NewManufacturerNotFoundError(manufacturerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeManufacturerNotFound,
		Message:   "Manufacturer not found",
		Details:   fmt.Sprintf("manufacturerId: %s", manufacturerID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPoolLookupFailedError creates a retryable candidate-pool lookup error.
func NewPoolLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePoolLookupFailed,
		Message:   "Candidate pool lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search backend error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Cache errors are
// advisory; callers recompute instead of failing the request.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Result cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionTimeoutError signals that a predictor adjunct did not answer
// within its bounded timeout. Non-fatal; deterministic scoring takes over.
func NewPredictionTimeoutError(manufacturerID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionTimeout,
		Message:   "Predictor timed out",
		Details:   fmt.Sprintf("manufacturerId: %s", manufacturerID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
