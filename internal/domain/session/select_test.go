package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 4, 20, 6, 0, 0, 0, time.UTC)

func newItem(t *testing.T, term string, createdAt time.Time) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(uuid.New(), term, nil, nil, createdAt)
	require.NoError(t, err)
	return item
}

func reviewedItem(t *testing.T, term string, dueAt time.Time) *domain.VocabularyItem {
	t.Helper()
	item := newItem(t, term, base.Add(-30*24*time.Hour))
	last := dueAt.Add(-24 * time.Hour)
	item.Repetitions = 1
	item.IntervalDays = 1
	item.LastReviewedAt = &last
	item.DueAt = dueAt
	return item
}

func terms(items []*domain.VocabularyItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.TermNormalized
	}
	return out
}

func TestSelectTodayOrdering(t *testing.T) {
	t.Parallel()
	now := base

	items := []*domain.VocabularyItem{
		newItem(t, "gamma", base.Add(-1*time.Hour)),
		reviewedItem(t, "zeta", now.Add(-48*time.Hour)),
		newItem(t, "alpha", base.Add(-3*time.Hour)),
		reviewedItem(t, "beta", now.Add(-time.Hour)),
		reviewedItem(t, "alpha-two", now.Add(-time.Hour)),
		reviewedItem(t, "later", now.Add(time.Hour)),
	}

	sel := SelectToday(items, now, 10)

	assert.Equal(t, []string{"zeta", "alpha-two", "beta"}, terms(sel.Due))
	assert.Equal(t, []string{"alpha", "gamma"}, terms(sel.New))
}

func TestSelectTodayDueFillsLimit(t *testing.T) {
	t.Parallel()
	now := base

	items := []*domain.VocabularyItem{
		newItem(t, "fresh", base),
		reviewedItem(t, "one", now.Add(-3*time.Hour)),
		reviewedItem(t, "two", now.Add(-2*time.Hour)),
		reviewedItem(t, "three", now.Add(-1*time.Hour)),
	}

	sel := SelectToday(items, now, 2)

	assert.Equal(t, []string{"one", "two"}, terms(sel.Due))
	assert.Empty(t, sel.New)
}

func TestSelectTodayNewFillsRemainder(t *testing.T) {
	t.Parallel()
	now := base

	items := []*domain.VocabularyItem{
		newItem(t, "n1", base.Add(-3*time.Hour)),
		newItem(t, "n2", base.Add(-2*time.Hour)),
		newItem(t, "n3", base.Add(-1*time.Hour)),
		reviewedItem(t, "due", now),
	}

	sel := SelectToday(items, now, 3)

	assert.Equal(t, []string{"due"}, terms(sel.Due), "dueAt equal to now is due")
	assert.Equal(t, []string{"n1", "n2"}, terms(sel.New))
}

func TestSelectTodayDeduplicatesByID(t *testing.T) {
	t.Parallel()
	now := base

	dup := reviewedItem(t, "twice", now.Add(-time.Hour))
	items := []*domain.VocabularyItem{dup, dup, nil, dup}

	sel := SelectToday(items, now, 5)

	assert.Len(t, sel.Due, 1)
	assert.Empty(t, sel.New)
}

func TestSelectTodayReaddedItemIsDue(t *testing.T) {
	t.Parallel()
	now := base

	// a re-added item has no repetitions but a review history
	item := reviewedItem(t, "readded", now)
	item.Repetitions = 0
	item.IntervalDays = 0

	sel := SelectToday([]*domain.VocabularyItem{item}, now, 5)

	assert.Equal(t, []string{"readded"}, terms(sel.Due))
	assert.Empty(t, sel.New)
}

func TestSelectTodayNonPositiveLimit(t *testing.T) {
	t.Parallel()
	items := []*domain.VocabularyItem{newItem(t, "x", base), reviewedItem(t, "y", base)}

	for _, limit := range []int{0, -3} {
		sel := SelectToday(items, base, limit)
		assert.NotNil(t, sel.New)
		assert.NotNil(t, sel.Due)
		assert.Zero(t, sel.Len())
	}
}

func TestSelectTodayDisjointAndBounded(t *testing.T) {
	t.Parallel()
	now := base

	var items []*domain.VocabularyItem
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			items = append(items, newItem(t, fmt.Sprintf("new-%02d", i), base.Add(time.Duration(-i)*time.Minute)))
		} else {
			items = append(items, reviewedItem(t, fmt.Sprintf("old-%02d", i), now.Add(time.Duration(i-10)*time.Hour)))
		}
	}

	for limit := 0; limit <= 25; limit++ {
		sel := SelectToday(items, now, limit)
		assert.LessOrEqual(t, sel.Len(), limit)

		ids := map[uuid.UUID]bool{}
		for _, item := range append(append([]*domain.VocabularyItem{}, sel.New...), sel.Due...) {
			assert.False(t, ids[item.ID], "item %s selected twice", item.TermNormalized)
			ids[item.ID] = true
		}
	}
}
