// Package errors provides standardized error handling for the ranking engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Ranking pass errors. Missing signals and degraded collaborators are
// recorded, never fatal; only empty inputs end a pass early.
const (
	ErrCodeEmptyCandidateSet ErrorCode = "EMPTY_CANDIDATE_SET"
	ErrCodeEmptyRequirement  ErrorCode = "EMPTY_REQUIREMENT"
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"

	ErrCodeMissingSignal       ErrorCode = "MISSING_SIGNAL"
	ErrCodeRerankerUnavailable ErrorCode = "RERANKER_UNAVAILABLE"
	ErrCodeRerankerTimeout     ErrorCode = "RERANKER_TIMEOUT"
	ErrCodeEmbeddingFailed     ErrorCode = "EMBEDDING_FAILED"

	ErrCodeTaxonomyLoadFailed ErrorCode = "TAXONOMY_LOAD_FAILED"

	ErrCodeVectorSearchFailed ErrorCode = "VECTOR_SEARCH_FAILED"
	ErrCodeFeatureStoreFailed ErrorCode = "FEATURE_STORE_FAILED"
	ErrCodeCacheUnavailable   ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewEmptyCandidateSetError marks a pass that had nothing to rank.
func NewEmptyCandidateSetError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyCandidateSet,
		Message:   "No candidates supplied, no basis to rank",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyRequirementError marks a requirement with no rankable content.
func NewEmptyRequirementError(requirementID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyRequirement,
		Message:   "Requirement document is empty, no basis to rank",
		Retryable: false,
		Metadata:  map[string]interface{}{"requirementId": requirementID},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidConfigError creates a non-retryable configuration error.
func NewInvalidConfigError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidConfig,
		Message:   "Invalid ranking configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable request validation error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Rank request failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRerankerUnavailableError creates a retryable model-service error.
func NewRerankerUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRerankerUnavailable,
		Message:   "Cross-encoder service unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRerankerTimeoutError creates a retryable timeout error.
func NewRerankerTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRerankerTimeout,
		Message:   "Cross-encoder call timed out",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmbeddingFailedError creates a retryable embedding-service error.
func NewEmbeddingFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmbeddingFailed,
		Message:   "Embedding call failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaxonomyLoadError creates a non-retryable startup error.
func NewTaxonomyLoadError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaxonomyLoadFailed,
		Message:   "Skill taxonomy could not be loaded",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"path": path},
		Timestamp: time.Now().UTC(),
	}
}

// NewVectorSearchError creates a retryable retrieval-layer error.
func NewVectorSearchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVectorSearchFailed,
		Message:   "Vector similarity lookup failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeatureStoreError creates a retryable persistence error.
func NewFeatureStoreError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeatureStoreFailed,
		Message:   "Feature store write failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Helpers
// ==========================

// AsStandard normalizes any error to a StandardError.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryable reports whether the error is worth retrying.
func IsRetryable(err error) bool {
	return AsStandard(err).Retryable
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return AsStandard(err).Code == code
}
