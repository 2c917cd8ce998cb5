package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrorCategory classifies a mistake kept in the writing error bank.
type ErrorCategory string

const (
	CategoryGrammar      ErrorCategory = "grammar"
	CategoryWordChoice   ErrorCategory = "word_choice"
	CategoryCollocation  ErrorCategory = "collocation"
	CategorySpelling     ErrorCategory = "spelling"
	CategoryCohesion     ErrorCategory = "cohesion"
	CategoryTaskResponse ErrorCategory = "task_response"
)

// Valid reports whether c is one of the known categories.
func (c ErrorCategory) Valid() bool {
	switch c {
	case CategoryGrammar, CategoryWordChoice, CategoryCollocation,
		CategorySpelling, CategoryCohesion, CategoryTaskResponse:
		return true
	}
	return false
}

// Validation errors for WritingError.
var (
	ErrEmptySentence   = errors.New("sentence and corrected sentence are required")
	ErrInvalidCategory = errors.New("invalid error category")
)

// WritingError is a sentence the learner got wrong together with its
// correction. Count is how many times the same mistake was recorded.
type WritingError struct {
	ID                uuid.UUID     `json:"id"`
	Sentence          string        `json:"sentence"`
	CorrectedSentence string        `json:"corrected_sentence"`
	Category          ErrorCategory `json:"category"`
	Notes             *string       `json:"notes,omitempty"`
	Topic             *string       `json:"topic,omitempty"`
	Count             int           `json:"count"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// NewWritingError creates a bank entry seen once. Both sentences are trimmed.
func NewWritingError(
	id uuid.UUID,
	sentence, corrected string,
	category ErrorCategory,
	notes, topic *string,
	now time.Time,
) (*WritingError, error) {
	e := &WritingError{
		ID:                id,
		Sentence:          strings.TrimSpace(sentence),
		CorrectedSentence: strings.TrimSpace(corrected),
		Category:          category,
		Notes:             notes,
		Topic:             topic,
		Count:             1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the entry invariants.
func (e *WritingError) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: writing error ID cannot be empty", ErrValidation)
	}
	if e.Sentence == "" || e.CorrectedSentence == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptySentence)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidCategory)
	}
	if e.Count < 1 {
		return fmt.Errorf("%w: count must be positive", ErrValidation)
	}
	return nil
}

// DedupKey identifies the mistake regardless of case and surrounding
// whitespace. Recording an entry with an existing key bumps its count.
func (e *WritingError) DedupKey() string {
	h := sha256.New()
	for _, part := range []string{
		strings.ToLower(strings.TrimSpace(e.Sentence)),
		strings.ToLower(strings.TrimSpace(e.CorrectedSentence)),
		string(e.Category),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
