package store

import (
	"errors"
	"fmt"

	"github.com/phrazzld/lexis/internal/domain"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// It wraps domain.ErrNotFound so callers above the store can match either.
	ErrNotFound = fmt.Errorf("entity not found: %w", domain.ErrNotFound)

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second item with the same normalized term).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrVocabNotFound indicates that the requested vocabulary item does not exist in the store.
	ErrVocabNotFound = fmt.Errorf("%w: vocabulary item", ErrNotFound)

	// ErrReviewLogNotFound indicates that the referenced review log does not exist in the store.
	ErrReviewLogNotFound = fmt.Errorf("%w: review log", ErrNotFound)

	// ErrPackNotFound indicates that the requested topic pack does not exist in the store.
	ErrPackNotFound = fmt.Errorf("%w: pack", ErrNotFound)

	// ErrWritingErrorNotFound indicates that the requested error bank entry does not exist.
	ErrWritingErrorNotFound = fmt.Errorf("%w: writing error", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrTermExists indicates that another item already uses the normalized term.
	ErrTermExists = fmt.Errorf("%w: term", ErrDuplicate)

	// ErrReviewLogExists indicates that a review log with the same ID is already stored.
	ErrReviewLogExists = fmt.Errorf("%w: review log", ErrDuplicate)

	// ErrPackNameExists indicates that another pack already uses the name.
	ErrPackNameExists = fmt.Errorf("%w: pack name", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "vocab", "review_log")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
