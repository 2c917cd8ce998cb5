package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 0.0001

func TestCalculateEaseDelta(t *testing.T) {
	t.Parallel() // Enable parallel execution

	testCases := []struct {
		grade    domain.Grade
		expected float64
	}{
		{grade: 5, expected: 0.1},
		{grade: 4, expected: 0.0},
		{grade: 3, expected: -0.14},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.expected, calculateEaseDelta(tc.grade), epsilon, "grade %d", tc.grade)
	}
}

func TestCalculateNewEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		current  float64
		grade    domain.Grade
		expected float64
	}{
		{name: "perfect recall raises ease", current: 2.5, grade: 5, expected: 2.6},
		{name: "grade 4 keeps ease", current: 2.5, grade: 4, expected: 2.5},
		{name: "grade 3 lowers ease", current: 2.5, grade: 3, expected: 2.36},
		{name: "floor enforced", current: 1.35, grade: 3, expected: 1.3},
		{name: "no ceiling", current: 3.0, grade: 5, expected: 3.1},
		{name: "rounded to two decimals", current: 2.333, grade: 4, expected: 2.33},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			newEF := calculateNewEaseFactor(tc.current, tc.grade, params)
			assert.InDelta(t, tc.expected, newEF, epsilon)
		})
	}
}

func TestCalculateNewInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name        string
		previous    int
		repetitions int
		ef          float64
		expected    int
	}{
		{name: "first repetition", previous: 0, repetitions: 1, ef: 2.5, expected: 1},
		{name: "second repetition", previous: 1, repetitions: 2, ef: 2.5, expected: 6},
		{name: "third repetition multiplies by ease", previous: 6, repetitions: 3, ef: 2.5, expected: 15},
		{name: "half rounds away from zero", previous: 3, repetitions: 4, ef: 2.5, expected: 8},
		{name: "low ease", previous: 10, repetitions: 5, ef: 1.3, expected: 13},
		{name: "never below one day", previous: 0, repetitions: 3, ef: 1.3, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := calculateNewInterval(tc.previous, tc.repetitions, tc.ef, params)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestCalculateNextReviewDate(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2025, 1, 31, 8, 30, 0, 0, time.UTC)

	assert.True(t, calculateNextReviewDate(0, now).Equal(now), "zero interval is due now")

	expected := time.Date(2025, 2, 6, 8, 30, 0, 0, time.UTC)
	assert.True(t, calculateNextReviewDate(6, now).Equal(expected))
}

func TestCalculateNextStateFailure(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Now().UTC()
	last := now.Add(-24 * time.Hour)

	state := domain.SchedulingState{
		EaseFactor:     2.2,
		IntervalDays:   15,
		Repetitions:    4,
		Lapses:         1,
		DueAt:          now,
		LastReviewedAt: &last,
	}

	for grade := domain.Grade(0); grade < domain.PassingGrade; grade++ {
		next := calculateNextState(state, grade, now, params)

		assert.Equal(t, 0, next.Repetitions, "grade %d", grade)
		assert.Equal(t, 0, next.IntervalDays, "grade %d", grade)
		assert.Equal(t, 2, next.Lapses, "grade %d", grade)
		assert.Equal(t, 2.2, next.EaseFactor, "grade %d: ease unchanged", grade)
		assert.True(t, next.DueAt.Equal(now), "grade %d: due now", grade)
		require.NotNil(t, next.LastReviewedAt)
		assert.True(t, next.LastReviewedAt.Equal(now), "grade %d: last reviewed now", grade)
	}

	// input untouched
	assert.Equal(t, 4, state.Repetitions)
	assert.True(t, state.LastReviewedAt.Equal(last))
}

func TestCalculateNextStateRepairsCorruptInput(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Now().UTC()

	state := domain.SchedulingState{
		EaseFactor:   0.4,
		IntervalDays: -3,
		Repetitions:  -2,
		Lapses:       -1,
	}

	next := calculateNextState(state, 5, now, params)

	assert.Equal(t, 1, next.Repetitions)
	assert.Equal(t, 1, next.IntervalDays)
	assert.Equal(t, 0, next.Lapses)
	assert.InDelta(t, 1.4, next.EaseFactor, epsilon, "floor 1.3 plus 0.1")
}

func TestCalculateReaddState(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Now().UTC()
	last := now.Add(-72 * time.Hour)

	state := domain.SchedulingState{
		EaseFactor:     2.5,
		IntervalDays:   6,
		Repetitions:    2,
		Lapses:         1,
		DueAt:          now.AddDate(0, 0, 6),
		LastReviewedAt: &last,
	}

	next := calculateReaddState(state, now, params)

	assert.InDelta(t, 2.3, next.EaseFactor, epsilon)
	assert.Equal(t, 0, next.Repetitions)
	assert.Equal(t, 0, next.IntervalDays)
	assert.True(t, next.DueAt.Equal(now))
	assert.Equal(t, 1, next.Lapses, "lapses kept")
	assert.NotNil(t, next.LastReviewedAt, "review history kept")

	floor := calculateReaddState(domain.SchedulingState{EaseFactor: 1.4}, now, params)
	assert.InDelta(t, 1.3, floor.EaseFactor, epsilon)
}
