package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidGrade is returned when a review grade is outside 0..5.
	ErrInvalidGrade = errors.New("invalid grade")

	// ErrEmptyTerm is returned when a term normalizes to the empty string.
	ErrEmptyTerm = errors.New("term is empty after normalization")

	// ErrTermMismatch is returned when a re-add targets an item whose
	// normalized term differs from the submitted one.
	ErrTermMismatch = errors.New("normalized term does not match existing item")

	// ErrNotFound is returned when a referenced vocabulary item does not exist.
	ErrNotFound = errors.New("vocabulary item not found")

	// ErrIncompatibleSchema is returned when two snapshots carry different
	// schema versions.
	ErrIncompatibleSchema = errors.New("incompatible snapshot schema version")

	// ErrMergeInvariantViolation is returned when a snapshot would contain
	// two items with the same normalized term or two logs with the same id.
	ErrMergeInvariantViolation = errors.New("merge invariant violation")
)
