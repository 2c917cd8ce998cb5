package srs

import (
	"time"

	"github.com/phrazzld/lexis/internal/domain"
)

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Schedule computes the scheduling state after a review with the given grade.
	// It returns domain.ErrInvalidGrade for grades outside 0..5.
	Schedule(state domain.SchedulingState, grade domain.Grade, now time.Time) (domain.SchedulingState, error)

	// ApplyReaddPenalty computes the scheduling state of an item whose term was added again.
	ApplyReaddPenalty(state domain.SchedulingState, now time.Time) domain.SchedulingState

	// Params returns the parameters the service was built with.
	Params() Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Schedule implements Service.
func (s *defaultService) Schedule(
	state domain.SchedulingState,
	grade domain.Grade,
	now time.Time,
) (domain.SchedulingState, error) {
	if !grade.Valid() {
		return domain.SchedulingState{}, domain.ErrInvalidGrade
	}

	return calculateNextState(state, grade, now, s.params), nil
}

// ApplyReaddPenalty implements Service.
func (s *defaultService) ApplyReaddPenalty(state domain.SchedulingState, now time.Time) domain.SchedulingState {
	return calculateReaddState(state, now, s.params)
}

// Params implements Service.
func (s *defaultService) Params() Params {
	return *s.params
}
