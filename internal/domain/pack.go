package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Target band bounds for a topic pack.
const (
	MinTargetBand = 1.0
	MaxTargetBand = 9.0
)

// Validation errors for Pack.
var (
	ErrEmptyPackID       = errors.New("pack ID cannot be empty")
	ErrEmptyPackName     = errors.New("pack name cannot be empty")
	ErrInvalidTargetBand = errors.New("target band must be between 1 and 9")
)

// Pack is a named topic collection of vocabulary items, studied as a unit.
// VocabIDs keeps the order in which items were added.
type Pack struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Topics      []string    `json:"topics"`
	TargetBand  *float64    `json:"target_band,omitempty"`
	VocabIDs    []uuid.UUID `json:"vocab_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewPack creates an empty pack. The name is trimmed and topics are
// de-duplicated in order.
func NewPack(
	id uuid.UUID,
	name string,
	description *string,
	topics []string,
	targetBand *float64,
	now time.Time,
) (*Pack, error) {
	p := &Pack{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Description: description,
		Topics:      UniqueStrings(topics),
		TargetBand:  targetBand,
		VocabIDs:    []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the pack invariants.
func (p *Pack) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPackID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %w", ErrValidation, ErrEmptyPackName)
	}
	if b := p.TargetBand; b != nil && (*b < MinTargetBand || *b > MaxTargetBand) {
		return fmt.Errorf("%w: %w", ErrValidation, ErrInvalidTargetBand)
	}
	return nil
}

// HasVocab reports whether the item is part of the pack.
func (p *Pack) HasVocab(id uuid.UUID) bool {
	return slices.Contains(p.VocabIDs, id)
}

// UniqueStrings trims every value, drops empty ones and removes exact
// duplicates, keeping the first occurrence.
func UniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
