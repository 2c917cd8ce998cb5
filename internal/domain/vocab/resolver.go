// Package vocab decides what happens when the learner adds or edits a term.
//
// Adding a term that already exists is a re-add: the learner met a word they
// thought was new, so the item is treated as freshly forgotten. Editing is a
// separate path that never touches scheduling.
package vocab

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/srs"
)

// AddInput carries the fields of an add request.
type AddInput struct {
	Term     string
	Meanings []string
	Tags     []string
}

// EditInput carries the fields of an edit request. Nil fields are left as they are.
type EditInput struct {
	Term     *string
	Meanings []string
	Tags     []string
}

// Resolution is the outcome of ResolveAdd.
type Resolution struct {
	Item           *domain.VocabularyItem
	Created        bool
	PenaltyApplied bool
}

// Resolver applies add and edit requests to vocabulary items.
type Resolver struct {
	scheduler srs.Service
}

// NewResolver creates a Resolver that uses scheduler for re-add penalties.
func NewResolver(scheduler srs.Service) *Resolver {
	if scheduler == nil {
		scheduler = srs.NewDefaultService()
	}
	return &Resolver{scheduler: scheduler}
}

var defaultResolver = NewResolver(nil)

// ResolveAdd resolves an add request with default scheduling parameters.
func ResolveAdd(existing *domain.VocabularyItem, in AddInput, newID uuid.UUID, now time.Time) (Resolution, error) {
	return defaultResolver.ResolveAdd(existing, in, newID, now)
}

// ApplyEdit applies an edit request with default scheduling parameters.
func ApplyEdit(item *domain.VocabularyItem, in EditInput, now time.Time) (*domain.VocabularyItem, error) {
	return defaultResolver.ApplyEdit(item, in, now)
}

// ResolveAdd turns an add request into the item to persist.
//
// existing is the stored item with the same normalized term, or nil. Without
// one, a new item with ID newID is created. With one, the request is a re-add:
// meanings are unioned (existing first), incoming tags are ignored, the
// schedule restarts and the ease factor takes the re-add penalty.
//
// ResolveAdd never modifies existing.
func (r *Resolver) ResolveAdd(
	existing *domain.VocabularyItem,
	in AddInput,
	newID uuid.UUID,
	now time.Time,
) (Resolution, error) {
	key := domain.NormalizeTerm(in.Term)
	if key == "" {
		return Resolution{}, domain.ErrEmptyTerm
	}

	if existing == nil {
		item, err := domain.NewVocabularyItem(newID, in.Term, in.Meanings, in.Tags, now)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{Item: item, Created: true}, nil
	}

	if existing.TermNormalized != key {
		return Resolution{}, domain.ErrTermMismatch
	}

	item := existing.Clone()
	item.Meanings = domain.UnionMeanings(existing.Meanings, in.Meanings)
	item.SchedulingState = r.scheduler.ApplyReaddPenalty(existing.Scheduling(), now)
	item.ReaddCount = max(existing.ReaddCount, 0) + 1
	readdAt := now
	item.LastReaddAt = &readdAt
	item.UpdatedAt = now

	return Resolution{Item: item, PenaltyApplied: true}, nil
}

// ApplyEdit returns a copy of item with the requested fields replaced.
//
// Changing the term re-derives the normalized key; the caller must check the
// new key is not taken by another item. Scheduling state and re-add tracking
// are never changed.
func (r *Resolver) ApplyEdit(item *domain.VocabularyItem, in EditInput, now time.Time) (*domain.VocabularyItem, error) {
	edited := item.Clone()

	if in.Term != nil {
		key := domain.NormalizeTerm(*in.Term)
		if key == "" {
			return nil, domain.ErrEmptyTerm
		}
		edited.TermRaw = *in.Term
		edited.TermNormalized = key
	}
	if in.Meanings != nil {
		edited.Meanings = domain.CleanMeanings(in.Meanings)
	}
	if in.Tags != nil {
		edited.Tags = domain.CleanTags(in.Tags)
	}
	edited.UpdatedAt = now

	if err := edited.Validate(); err != nil {
		return nil, err
	}

	return edited, nil
}
