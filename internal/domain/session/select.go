// Package session picks the items the learner studies today.
package session

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// Selection is the result of SelectToday. New and Due never share an item.
type Selection struct {
	New []*domain.VocabularyItem `json:"new"`
	Due []*domain.VocabularyItem `json:"due"`
}

// Len returns the total number of selected items.
func (s Selection) Len() int {
	return len(s.New) + len(s.Due)
}

// SelectToday chooses at most limit items to study at now.
//
// Items that were never reviewed (no repetitions, no review time) are new and
// are offered in creation order. Every other item whose due time has passed is
// due, most overdue first, with ties broken by normalized term and then ID.
// Due items take precedence: new items only fill what is left of limit.
//
// Duplicate IDs in items are ignored after their first occurrence. now must
// already be expressed in the session's calendar; the selector does no
// timezone handling of its own.
func SelectToday(items []*domain.VocabularyItem, now time.Time, limit int) Selection {
	sel := Selection{
		New: []*domain.VocabularyItem{},
		Due: []*domain.VocabularyItem{},
	}
	if limit <= 0 {
		return sel
	}

	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		switch {
		case item.IsNew():
			sel.New = append(sel.New, item)
		case !item.DueAt.After(now):
			sel.Due = append(sel.Due, item)
		}
	}

	slices.SortStableFunc(sel.Due, compareDue)
	slices.SortStableFunc(sel.New, compareNew)

	if len(sel.Due) > limit {
		sel.Due = sel.Due[:limit]
	}
	if remaining := limit - len(sel.Due); len(sel.New) > remaining {
		sel.New = sel.New[:remaining]
	}

	return sel
}

func compareDue(a, b *domain.VocabularyItem) int {
	if c := a.DueAt.Compare(b.DueAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TermNormalized, b.TermNormalized); c != 0 {
		return c
	}
	return cmp.Compare(a.ID.String(), b.ID.String())
}

func compareNew(a, b *domain.VocabularyItem) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.TermNormalized, b.TermNormalized)
}
