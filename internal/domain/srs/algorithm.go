package srs

import (
	"math"
	"time"

	"github.com/phrazzld/lexis/internal/domain"
)

// calculateEaseDelta returns the SM-2 ease adjustment for a passing grade:
//
//	0.1 - (5-g) * (0.08 + (5-g) * 0.02)
//
// Grade 5 adds 0.1, grade 4 leaves the ease unchanged and grade 3 subtracts 0.14.
func calculateEaseDelta(grade domain.Grade) float64 {
	q := float64(domain.MaxGrade - grade)
	return 0.1 - q*(0.08+q*0.02)
}

// calculateNewEaseFactor applies the grade's delta to the current ease factor,
// rounds to params.EasePrecision decimals and clamps to params.MinEaseFactor.
// There is no upper bound.
func calculateNewEaseFactor(currentEF float64, grade domain.Grade, params *Params) float64 {
	return clampEase(roundTo(currentEF+calculateEaseDelta(grade), params.EasePrecision), params)
}

// calculateNewInterval determines the interval in days after a successful
// review. repetitions is the count after this review has been applied and
// easeFactor is the value before it.
//
// The first repetition schedules params.FirstInterval days out, the second
// params.SecondInterval; later ones multiply the previous interval by the ease
// factor, rounded half away from zero and never below one day.
func calculateNewInterval(previousInterval, repetitions int, easeFactor float64, params *Params) int {
	switch repetitions {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	}

	interval := int(math.Round(float64(previousInterval) * easeFactor))
	return max(interval, 1)
}

// calculateNextReviewDate places the next review interval calendar days after now.
// A zero interval means the item is due again immediately.
func calculateNextReviewDate(interval int, now time.Time) time.Time {
	return now.AddDate(0, 0, interval)
}

// calculateNextState produces the scheduling state after a review.
//
// The input is first repaired (see domain.SchedulingState.Normalized) so that
// corrupt stored values never propagate. A failing grade resets repetitions
// and interval, counts a lapse and leaves the ease factor untouched. A passing
// grade advances repetitions, grows the interval and adjusts the ease factor.
// The input is never modified.
func calculateNextState(
	state domain.SchedulingState,
	grade domain.Grade,
	now time.Time,
	params *Params,
) domain.SchedulingState {
	current := state.Normalized()
	next := current

	if grade < params.PassingGrade {
		next.Repetitions = 0
		next.IntervalDays = 0
		next.Lapses = current.Lapses + 1
	} else {
		next.Repetitions = current.Repetitions + 1
		next.IntervalDays = calculateNewInterval(current.IntervalDays, next.Repetitions, current.EaseFactor, params)
		next.EaseFactor = calculateNewEaseFactor(current.EaseFactor, grade, params)
	}

	next.DueAt = calculateNextReviewDate(next.IntervalDays, now)
	reviewedAt := now
	next.LastReviewedAt = &reviewedAt

	return next
}

// calculateReaddState resets an item that the learner added again: it is due
// now, starts its repetitions over and loses params.ReaddPenalty ease.
// Lapses and the last review time are history and stay as they were.
func calculateReaddState(state domain.SchedulingState, now time.Time, params *Params) domain.SchedulingState {
	next := state.Normalized()
	next.Repetitions = 0
	next.IntervalDays = 0
	next.DueAt = now
	next.EaseFactor = clampEase(roundTo(next.EaseFactor-params.ReaddPenalty, params.EasePrecision), params)
	return next
}

func clampEase(ef float64, params *Params) float64 {
	return math.Max(ef, params.MinEaseFactor)
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
