package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults for freshly created items.
const (
	// MinEaseFactor is the floor every ease factor is clamped to.
	MinEaseFactor = 1.3

	// DefaultEaseFactor is the ease factor of a newly added item.
	DefaultEaseFactor = 2.5
)

// Validation errors for VocabularyItem.
var (
	ErrEmptyVocabID      = errors.New("vocabulary item ID cannot be empty")
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")
	ErrNegativeCounter   = errors.New("scheduling counters cannot be negative")
	ErrNonCanonicalTerm  = errors.New("normalized term does not match raw term")
)

// SchedulingState is the part of a vocabulary item the scheduler reads and
// writes. It is a value type: functions receive and return copies.
type SchedulingState struct {
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
}

// NewSchedulingState returns the state of an item that has never been
// reviewed: due immediately with the default ease factor.
func NewSchedulingState(now time.Time) SchedulingState {
	return SchedulingState{
		EaseFactor: DefaultEaseFactor,
		DueAt:      now,
	}
}

// Normalized returns a copy with corrupt values repaired: an ease factor
// below the floor (or NaN) is raised to MinEaseFactor and negative counters
// become zero.
func (s SchedulingState) Normalized() SchedulingState {
	if math.IsNaN(s.EaseFactor) || math.IsInf(s.EaseFactor, 0) || s.EaseFactor < MinEaseFactor {
		s.EaseFactor = MinEaseFactor
	}
	s.IntervalDays = max(s.IntervalDays, 0)
	s.Repetitions = max(s.Repetitions, 0)
	s.Lapses = max(s.Lapses, 0)
	s.LastReviewedAt = cloneTime(s.LastReviewedAt)
	return s
}

// IsNew reports whether the item has never been successfully reviewed.
func (s SchedulingState) IsNew() bool {
	return s.Repetitions == 0 && s.LastReviewedAt == nil
}

// VocabularyItem is a single term the learner studies.
type VocabularyItem struct {
	ID             uuid.UUID `json:"id"`
	TermRaw        string    `json:"term_raw"`
	TermNormalized string    `json:"term_normalized"`
	Meanings       []string  `json:"meanings"`
	Tags           []string  `json:"tags"`

	SchedulingState

	ReaddCount  int        `json:"readd_count"`
	LastReaddAt *time.Time `json:"last_readd_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVocabularyItem creates an item with default scheduling state.
// The normalized term is derived from raw; an empty key is rejected.
func NewVocabularyItem(
	id uuid.UUID,
	raw string,
	meanings, tags []string,
	now time.Time,
) (*VocabularyItem, error) {
	item := &VocabularyItem{
		ID:              id,
		TermRaw:         raw,
		TermNormalized:  NormalizeTerm(raw),
		Meanings:        CleanMeanings(meanings),
		Tags:            CleanTags(tags),
		SchedulingState: NewSchedulingState(now),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks the item invariants.
func (v *VocabularyItem) Validate() error {
	if v.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyVocabID)
	}
	if v.TermNormalized == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyTerm)
	}
	if NormalizeTerm(v.TermRaw) != v.TermNormalized {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNonCanonicalTerm)
	}
	if v.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidEaseFactor)
	}
	if v.IntervalDays < 0 || v.Repetitions < 0 || v.Lapses < 0 || v.ReaddCount < 0 {
		return fmt.Errorf("%w: %w", ErrValidation, ErrNegativeCounter)
	}
	return nil
}

// Scheduling returns a copy of the item's scheduling state.
func (v *VocabularyItem) Scheduling() SchedulingState {
	s := v.SchedulingState
	s.LastReviewedAt = cloneTime(s.LastReviewedAt)
	return s
}

// Clone returns a deep copy of the item.
func (v *VocabularyItem) Clone() *VocabularyItem {
	c := *v
	c.Meanings = slices.Clone(v.Meanings)
	c.Tags = slices.Clone(v.Tags)
	c.LastReviewedAt = cloneTime(v.LastReviewedAt)
	c.LastReaddAt = cloneTime(v.LastReaddAt)
	return &c
}

// SameContent reports whether two items carry identical data, ignoring ID.
// Timestamps are compared by instant.
func (v *VocabularyItem) SameContent(o *VocabularyItem) bool {
	return v.TermRaw == o.TermRaw &&
		v.TermNormalized == o.TermNormalized &&
		slices.Equal(v.Meanings, o.Meanings) &&
		slices.Equal(v.Tags, o.Tags) &&
		v.EaseFactor == o.EaseFactor &&
		v.IntervalDays == o.IntervalDays &&
		v.Repetitions == o.Repetitions &&
		v.Lapses == o.Lapses &&
		v.DueAt.Equal(o.DueAt) &&
		equalTimePtr(v.LastReviewedAt, o.LastReviewedAt) &&
		v.ReaddCount == o.ReaddCount &&
		equalTimePtr(v.LastReaddAt, o.LastReaddAt) &&
		v.CreatedAt.Equal(o.CreatedAt) &&
		v.UpdatedAt.Equal(o.UpdatedAt)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
