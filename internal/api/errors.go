package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/service/auth"
	"github.com/phrazzld/lexis/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Well-formed snapshots that cannot be merged
	case errors.Is(err, domain.ErrMergeInvariantViolation):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, domain.ErrEmptyTerm),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrIncompatibleSchema),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrPackNotFound):
		return "Pack not found"
	case errors.Is(err, store.ErrWritingErrorNotFound):
		return "Writing error not found"
	case errors.Is(err, store.ErrVocabNotFound):
		return "Vocabulary item not found"
	// every store not-found error wraps domain.ErrNotFound, so this case comes first
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, domain.ErrNotFound):
		return "Vocabulary item not found"

	case errors.Is(err, store.ErrTermExists):
		return "Another item already uses this term"
	case errors.Is(err, store.ErrPackNameExists):
		return "Pack name already exists"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrMergeInvariantViolation):
		return "Snapshot contains duplicate terms or ids"
	case errors.Is(err, domain.ErrIncompatibleSchema):
		return "Unsupported snapshot schema version"

	case errors.Is(err, domain.ErrInvalidGrade):
		return "Grade must be between 0 and 5"
	case errors.Is(err, domain.ErrEmptyTerm):
		return "Term is empty after normalization"
	case errors.Is(err, domain.ErrEmptyPackName):
		return "Pack name is required"
	case errors.Is(err, domain.ErrInvalidTargetBand):
		return "Target band must be between 1 and 9"
	case errors.Is(err, domain.ErrInvalidCategory):
		return "Unknown error category"
	case errors.Is(err, domain.ErrEmptySentence):
		return "Sentence and correction are required"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, service.ErrInvalidInput):
		return "Invalid input"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. fallback
// replaces the generic message for unexpected server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnprocessableEntity || status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// HandleValidationError writes a 400 response for a failed request
// validation without echoing the raw validator output.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "too small"
	case "lte":
		return "too large"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}
