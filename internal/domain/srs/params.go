package srs

import "github.com/phrazzld/lexis/internal/domain"

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Ease factor floor; there is no ceiling
	MinEaseFactor float64

	// Grades at or above this value count as a successful recall
	PassingGrade domain.Grade

	// Intervals for the first and second successful repetition
	FirstInterval  int
	SecondInterval int

	// Ease factor reduction applied when a known term is added again
	ReaddPenalty float64

	// Decimal places the ease factor is rounded to after each review
	EasePrecision int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	MinEaseFactor  float64
	PassingGrade   domain.Grade
	FirstInterval  int
	SecondInterval int
	ReaddPenalty   float64
	EasePrecision  int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:  domain.MinEaseFactor,
		PassingGrade:   domain.PassingGrade,
		FirstInterval:  1,
		SecondInterval: 6,
		ReaddPenalty:   0.2,
		EasePrecision:  2,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values keep the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.PassingGrade > 0 && config.PassingGrade <= domain.MaxGrade {
		params.PassingGrade = config.PassingGrade
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}
	if config.ReaddPenalty > 0 {
		params.ReaddPenalty = config.ReaddPenalty
	}
	if config.EasePrecision > 0 {
		params.EasePrecision = config.EasePrecision
	}

	return params
}
