package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
)

// AddVocabRequest defines the payload for adding or re-adding a term.
type AddVocabRequest struct {
	Term     string   `json:"term"     validate:"required,max=200"`
	Meanings []string `json:"meanings" validate:"max=50,dive,max=500"`
	Tags     []string `json:"tags"     validate:"max=50,dive,max=64"`
}

// EditVocabRequest defines the payload for editing a term. Omitted fields
// keep their current value.
type EditVocabRequest struct {
	Term     *string  `json:"term"     validate:"omitempty,max=200"`
	Meanings []string `json:"meanings" validate:"omitempty,max=50,dive,max=500"`
	Tags     []string `json:"tags"     validate:"omitempty,max=50,dive,max=64"`
}

// SubmitReviewRequest defines the payload for grading a review.
// Grade is a pointer so that a missing grade is told apart from grade 0.
type SubmitReviewRequest struct {
	VocabID      uuid.UUID `json:"vocab_id"      validate:"required"`
	Grade        *int      `json:"grade"         validate:"required"`
	Mode         string    `json:"mode"          validate:"omitempty,oneof=flip mcq typing"`
	QuestionType string    `json:"question_type" validate:"omitempty,oneof=term_to_meaning meaning_to_term"`
}

// CreatePackRequest defines the payload for creating a topic pack.
type CreatePackRequest struct {
	Name        string      `json:"name"        validate:"required,max=100"`
	Description *string     `json:"description" validate:"omitempty,max=1000"`
	Topics      []string    `json:"topics"      validate:"max=20,dive,max=64"`
	TargetBand  *float64    `json:"target_band" validate:"omitempty,gte=1,lte=9"`
	VocabIDs    []uuid.UUID `json:"vocab_ids"   validate:"max=500"`
}

// AddPackVocabRequest defines the payload for linking an item to a pack.
type AddPackVocabRequest struct {
	VocabID uuid.UUID `json:"vocab_id" validate:"required"`
}

// RecordWritingErrorRequest defines the payload for adding a mistake to the error bank.
type RecordWritingErrorRequest struct {
	Sentence          string  `json:"sentence"           validate:"required,max=1000"`
	CorrectedSentence string  `json:"corrected_sentence" validate:"required,max=1000"`
	Category          string  `json:"category"           validate:"required,oneof=grammar word_choice collocation spelling cohesion task_response"`
	Notes             *string `json:"notes"              validate:"omitempty,max=2000"`
	Topic             *string `json:"topic"              validate:"omitempty,max=100"`
}

// VocabResponse represents a vocabulary item with its scheduling state.
type VocabResponse struct {
	ID             uuid.UUID  `json:"id"`
	TermRaw        string     `json:"term_raw"`
	TermNormalized string     `json:"term_normalized"`
	Meanings       []string   `json:"meanings"`
	Tags           []string   `json:"tags"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	Lapses         int        `json:"lapses"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	ReaddCount     int        `json:"readd_count"`
	LastReaddAt    *time.Time `json:"last_readd_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AddVocabResponse reports how an add request was resolved.
type AddVocabResponse struct {
	Item           VocabResponse `json:"item"`
	Created        bool          `json:"created"`
	PenaltyApplied bool          `json:"penalty_applied"`
}

// VocabListResponse is one page of items.
type VocabListResponse struct {
	Items []VocabResponse `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ReviewLogResponse represents one entry of the review history.
type ReviewLogResponse struct {
	ID           uuid.UUID              `json:"id"`
	VocabID      uuid.UUID              `json:"vocab_id"`
	GradedAt     time.Time              `json:"graded_at"`
	Grade        int                    `json:"grade"`
	Mode         string                 `json:"mode,omitempty"`
	QuestionType string                 `json:"question_type,omitempty"`
	Result       domain.SchedulingState `json:"result"`
}

// SubmitReviewResponse is the rescheduled item and its log entry.
type SubmitReviewResponse struct {
	Item VocabResponse     `json:"item"`
	Log  ReviewLogResponse `json:"log"`
}

// SessionResponse is the study list for today.
type SessionResponse struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Limit       int             `json:"limit"`
	Due         []VocabResponse `json:"due"`
	New         []VocabResponse `json:"new"`
}

// ImportResponse reports the outcome of a snapshot import.
type ImportResponse struct {
	DryRun  bool               `json:"dry_run"`
	Changed bool               `json:"changed"`
	Report  domain.MergeReport `json:"report"`
}

// PackResponse represents a topic pack.
type PackResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Topics      []string    `json:"topics"`
	TargetBand  *float64    `json:"target_band"`
	VocabIDs    []uuid.UUID `json:"vocab_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PackListResponse is one page of packs.
type PackListResponse struct {
	Packs []PackResponse `json:"packs"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// PackSessionResponse is a pack with its items, earliest due first.
type PackSessionResponse struct {
	Pack   PackResponse    `json:"pack"`
	Vocabs []VocabResponse `json:"vocabs"`
}

// WritingErrorResponse represents one entry of the error bank.
type WritingErrorResponse struct {
	ID                uuid.UUID `json:"id"`
	Sentence          string    `json:"sentence"`
	CorrectedSentence string    `json:"corrected_sentence"`
	Category          string    `json:"category"`
	Notes             *string   `json:"notes"`
	Topic             *string   `json:"topic"`
	Count             int       `json:"count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// WritingDeckItem is the part of an entry shown on a drill card.
type WritingDeckItem struct {
	ID                uuid.UUID `json:"id"`
	Sentence          string    `json:"sentence"`
	CorrectedSentence string    `json:"corrected_sentence"`
	Category          string    `json:"category"`
}

// WritingDeckResponse holds the mistakes to drill, most frequent first.
type WritingDeckResponse struct {
	Items []WritingDeckItem `json:"items"`
}

// EventResponse represents one entry of the audit trail.
type EventResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

func vocabToResponse(item *domain.VocabularyItem) VocabResponse {
	meanings := item.Meanings
	if meanings == nil {
		meanings = []string{}
	}
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return VocabResponse{
		ID:             item.ID,
		TermRaw:        item.TermRaw,
		TermNormalized: item.TermNormalized,
		Meanings:       meanings,
		Tags:           tags,
		EaseFactor:     item.EaseFactor,
		IntervalDays:   item.IntervalDays,
		Repetitions:    item.Repetitions,
		Lapses:         item.Lapses,
		DueAt:          item.DueAt,
		LastReviewedAt: item.LastReviewedAt,
		ReaddCount:     item.ReaddCount,
		LastReaddAt:    item.LastReaddAt,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func vocabsToResponse(items []*domain.VocabularyItem) []VocabResponse {
	out := make([]VocabResponse, 0, len(items))
	for _, item := range items {
		out = append(out, vocabToResponse(item))
	}
	return out
}

func reviewLogToResponse(entry *domain.ReviewLogEntry) ReviewLogResponse {
	return ReviewLogResponse{
		ID:           entry.ID,
		VocabID:      entry.VocabID,
		GradedAt:     entry.GradedAt,
		Grade:        int(entry.Grade),
		Mode:         string(entry.Mode),
		QuestionType: string(entry.QuestionType),
		Result:       entry.Result,
	}
}

func sessionToResponse(s *service.TodaySession) SessionResponse {
	return SessionResponse{
		GeneratedAt: s.GeneratedAt,
		Limit:       s.Limit,
		Due:         vocabsToResponse(s.Due),
		New:         vocabsToResponse(s.New),
	}
}

func packToResponse(p *domain.Pack) PackResponse {
	topics := p.Topics
	if topics == nil {
		topics = []string{}
	}
	vocabIDs := p.VocabIDs
	if vocabIDs == nil {
		vocabIDs = []uuid.UUID{}
	}
	return PackResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Topics:      topics,
		TargetBand:  p.TargetBand,
		VocabIDs:    vocabIDs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func writingErrorToResponse(e *domain.WritingError) WritingErrorResponse {
	return WritingErrorResponse{
		ID:                e.ID,
		Sentence:          e.Sentence,
		CorrectedSentence: e.CorrectedSentence,
		Category:          string(e.Category),
		Notes:             e.Notes,
		Topic:             e.Topic,
		Count:             e.Count,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
