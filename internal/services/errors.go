package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/analytics-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrFacultyIDRequired = errors.New("faculty id is required")
	ErrNoCachedAnalytics = errors.New("no cached analytics for faculty")
	ErrInternalError     = errors.New("internal server error")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== PIPELINE ERROR TAXONOMY =====

// SourceFetchError marks a single record-source query failure. It is
// recovered locally: the affected item contributes zero to all aggregates
// and the run keeps going. Never surfaced to callers.
type SourceFetchError struct {
	Query string // e.g. "students_for_class"
	Key   string // the identifier the query was keyed by
	Err   error
}

func (e *SourceFetchError) Error() string {
	return fmt.Sprintf("record source fetch %s(%s) failed: %v", e.Query, e.Key, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// ComputationError marks an unexpected failure inside the analytics
// pipeline. Recovered by substituting a zeroed bundle; logged for
// operators.
type ComputationError struct {
	Stage Stage
	Err   error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("analytics computation failed at stage %s: %v", e.Stage, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// CacheError marks a cache read/write failure. Fully recovered; the run
// proceeds uncached.
type CacheError struct {
	Op  string // "get", "put", "invalidate"
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("analytics cache %s failed: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// ===== ERROR HELPERS =====

func NewSourceFetchError(query, key string, err error) *SourceFetchError {
	return &SourceFetchError{Query: query, Key: key, Err: err}
}

func NewComputationError(stage Stage, err error) *ComputationError {
	return &ComputationError{Stage: stage, Err: err}
}

func NewCacheError(op string, err error) *CacheError {
	return &CacheError{Op: op, Err: err}
}

// IsSourceFetch checks if error represents a recoverable source failure
func IsSourceFetch(err error) bool {
	var sfe *SourceFetchError
	return errors.As(err, &sfe)
}

// IsComputation checks if error represents a pipeline computation failure
func IsComputation(err error) bool {
	var ce *ComputationError
	return errors.As(err, &ce)
}

// IsCache checks if error represents a cache failure
func IsCache(err error) bool {
	var ce *CacheError
	return errors.As(err, &ce)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single) || errors.Is(err, ErrFacultyIDRequired)
}
