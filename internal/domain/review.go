package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Grade is the learner's self-assessed recall quality, 0 (blackout) to 5 (perfect).
type Grade int

// Grade bounds and the pass threshold.
const (
	MinGrade     Grade = 0
	MaxGrade     Grade = 5
	PassingGrade Grade = 3
)

// Valid reports whether g is within 0..5.
func (g Grade) Valid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// Passing reports whether g counts as a successful recall.
func (g Grade) Passing() bool {
	return g >= PassingGrade
}

// ReviewMode is the exercise format the learner used.
type ReviewMode string

// Supported review modes.
const (
	ReviewModeFlip   ReviewMode = "flip"
	ReviewModeMCQ    ReviewMode = "mcq"
	ReviewModeTyping ReviewMode = "typing"
)

// QuestionType is the direction of a review prompt.
type QuestionType string

// Supported question directions.
const (
	QuestionTermToMeaning QuestionType = "term_to_meaning"
	QuestionMeaningToTerm QuestionType = "meaning_to_term"
)

// Validation errors for ReviewLogEntry.
var (
	ErrEmptyReviewID      = errors.New("review log ID cannot be empty")
	ErrEmptyReviewVocabID = errors.New("review log vocab ID cannot be empty")
	ErrInvalidReviewMode  = errors.New("invalid review mode")
	ErrInvalidQuestion    = errors.New("invalid question type")
)

// ReviewLogEntry records one graded review and the scheduling state it
// produced. Entries are append-only and never mutated after creation.
type ReviewLogEntry struct {
	ID           uuid.UUID       `json:"id"`
	VocabID      uuid.UUID       `json:"vocab_id"`
	GradedAt     time.Time       `json:"graded_at"`
	Grade        Grade           `json:"grade"`
	Mode         ReviewMode      `json:"mode,omitempty"`
	QuestionType QuestionType    `json:"question_type,omitempty"`
	Result       SchedulingState `json:"result"`
}

// NewReviewLogEntry builds a log entry for a review that produced result.
func NewReviewLogEntry(
	id, vocabID uuid.UUID,
	grade Grade,
	mode ReviewMode,
	question QuestionType,
	result SchedulingState,
	gradedAt time.Time,
) (*ReviewLogEntry, error) {
	entry := &ReviewLogEntry{
		ID:           id,
		VocabID:      vocabID,
		GradedAt:     gradedAt,
		Grade:        grade,
		Mode:         mode,
		QuestionType: question,
		Result:       result,
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	return entry, nil
}

// Validate checks the entry's fields.
func (e *ReviewLogEntry) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyReviewID)
	}
	if e.VocabID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyReviewVocabID)
	}
	if !e.Grade.Valid() {
		return ErrInvalidGrade
	}
	switch e.Mode {
	case "", ReviewModeFlip, ReviewModeMCQ, ReviewModeTyping:
	default:
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidReviewMode)
	}
	switch e.QuestionType {
	case "", QuestionTermToMeaning, QuestionMeaningToTerm:
	default:
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidQuestion)
	}
	return nil
}
