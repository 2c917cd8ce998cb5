package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/vocab"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

type stubVocabService struct {
	addFn    func(ctx context.Context, in vocab.AddInput) (vocab.Resolution, error)
	editFn   func(ctx context.Context, id uuid.UUID, in vocab.EditInput) (*domain.VocabularyItem, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error)
	listFn   func(ctx context.Context, q service.ListQuery) (*service.VocabPage, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubVocabService) Add(ctx context.Context, in vocab.AddInput) (vocab.Resolution, error) {
	return s.addFn(ctx, in)
}

func (s *stubVocabService) Edit(ctx context.Context, id uuid.UUID, in vocab.EditInput) (*domain.VocabularyItem, error) {
	return s.editFn(ctx, id, in)
}

func (s *stubVocabService) Get(ctx context.Context, id uuid.UUID) (*domain.VocabularyItem, error) {
	return s.getFn(ctx, id)
}

func (s *stubVocabService) List(ctx context.Context, q service.ListQuery) (*service.VocabPage, error) {
	return s.listFn(ctx, q)
}

func (s *stubVocabService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubReviewService struct {
	submitFn  func(ctx context.Context, in service.SubmitInput) (*service.ReviewOutcome, error)
	historyFn func(ctx context.Context, id uuid.UUID) ([]*domain.ReviewLogEntry, error)
}

func (s *stubReviewService) Submit(ctx context.Context, in service.SubmitInput) (*service.ReviewOutcome, error) {
	return s.submitFn(ctx, in)
}

func (s *stubReviewService) History(ctx context.Context, id uuid.UUID) ([]*domain.ReviewLogEntry, error) {
	return s.historyFn(ctx, id)
}

type stubSessionService struct {
	todayFn func(ctx context.Context, limit int) (*service.TodaySession, error)
}

func (s *stubSessionService) Today(ctx context.Context, limit int) (*service.TodaySession, error) {
	return s.todayFn(ctx, limit)
}

type stubSyncService struct {
	exportFn func(ctx context.Context) (*domain.SyncSnapshot, error)
	importFn func(ctx context.Context, in *domain.SyncSnapshot, opts service.ImportOptions) (domain.MergeReport, error)
}

func (s *stubSyncService) Export(ctx context.Context) (*domain.SyncSnapshot, error) {
	return s.exportFn(ctx)
}

func (s *stubSyncService) Import(
	ctx context.Context,
	in *domain.SyncSnapshot,
	opts service.ImportOptions,
) (domain.MergeReport, error) {
	return s.importFn(ctx, in, opts)
}

type stubPackService struct {
	createFn   func(ctx context.Context, in service.CreatePackInput) (*domain.Pack, error)
	listFn     func(ctx context.Context, page, limit int) (*service.PackPage, error)
	getFn      func(ctx context.Context, id uuid.UUID) (*domain.Pack, error)
	addVocabFn func(ctx context.Context, packID, vocabID uuid.UUID) (*domain.Pack, error)
	sessionFn  func(ctx context.Context, packID uuid.UUID, limit int) (*service.PackSession, error)
}

func (s *stubPackService) Create(ctx context.Context, in service.CreatePackInput) (*domain.Pack, error) {
	return s.createFn(ctx, in)
}

func (s *stubPackService) List(ctx context.Context, page, limit int) (*service.PackPage, error) {
	return s.listFn(ctx, page, limit)
}

func (s *stubPackService) Get(ctx context.Context, id uuid.UUID) (*domain.Pack, error) {
	return s.getFn(ctx, id)
}

func (s *stubPackService) AddVocab(ctx context.Context, packID, vocabID uuid.UUID) (*domain.Pack, error) {
	return s.addVocabFn(ctx, packID, vocabID)
}

func (s *stubPackService) Session(ctx context.Context, packID uuid.UUID, limit int) (*service.PackSession, error) {
	return s.sessionFn(ctx, packID, limit)
}

type stubWritingService struct {
	recordFn func(ctx context.Context, in service.WritingErrorInput) (*domain.WritingError, error)
	listFn   func(ctx context.Context, q service.WritingErrorQuery) ([]*domain.WritingError, error)
	deckFn   func(ctx context.Context, size int) ([]*domain.WritingError, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubWritingService) Record(ctx context.Context, in service.WritingErrorInput) (*domain.WritingError, error) {
	return s.recordFn(ctx, in)
}

func (s *stubWritingService) List(
	ctx context.Context,
	q service.WritingErrorQuery,
) ([]*domain.WritingError, error) {
	return s.listFn(ctx, q)
}

func (s *stubWritingService) Deck(ctx context.Context, size int) ([]*domain.WritingError, error) {
	return s.deckFn(ctx, size)
}

func (s *stubWritingService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

type stubEventService struct {
	recentFn func(ctx context.Context, limit int) ([]*store.EventRecord, error)
}

func (s *stubEventService) Recent(ctx context.Context, limit int) ([]*store.EventRecord, error) {
	return s.recentFn(ctx, limit)
}

type stubs struct {
	vocab   *stubVocabService
	review  *stubReviewService
	session *stubSessionService
	sync    *stubSyncService
	packs   *stubPackService
	writing *stubWritingService
	events  *stubEventService
}

// testRouter mounts the handlers the same way the server does.
func testRouter(s stubs) http.Handler {
	if s.vocab == nil {
		s.vocab = &stubVocabService{}
	}
	if s.review == nil {
		s.review = &stubReviewService{}
	}
	if s.session == nil {
		s.session = &stubSessionService{}
	}
	if s.sync == nil {
		s.sync = &stubSyncService{}
	}
	if s.packs == nil {
		s.packs = &stubPackService{}
	}
	if s.writing == nil {
		s.writing = &stubWritingService{}
	}
	if s.events == nil {
		s.events = &stubEventService{}
	}

	vocabHandler := NewVocabHandler(s.vocab, s.review, nil)
	reviewHandler := NewReviewHandler(s.review, nil)
	sessionHandler := NewSessionHandler(s.session, nil)
	syncHandler := NewSyncHandler(s.sync, nil)
	packHandler := NewPackHandler(s.packs, nil)
	writingHandler := NewWritingHandler(s.writing, nil)
	eventHandler := NewEventHandler(s.events, nil)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/vocab", vocabHandler.Add)
		r.Get("/vocab", vocabHandler.List)
		r.Get("/vocab/{id}", vocabHandler.Get)
		r.Patch("/vocab/{id}", vocabHandler.Edit)
		r.Delete("/vocab/{id}", vocabHandler.Delete)
		r.Get("/vocab/{id}/reviews", vocabHandler.History)
		r.Post("/reviews", reviewHandler.Submit)
		r.Get("/session/today", sessionHandler.Today)
		r.Get("/sync/export", syncHandler.Export)
		r.Post("/sync/import", syncHandler.Import)
		r.Post("/packs", packHandler.Create)
		r.Get("/packs", packHandler.List)
		r.Get("/packs/{id}", packHandler.Get)
		r.Post("/packs/{id}/vocab", packHandler.AddVocab)
		r.Get("/packs/{id}/session", packHandler.Session)
		r.Post("/writing/error-bank", writingHandler.Record)
		r.Get("/writing/error-bank", writingHandler.List)
		r.Get("/writing/error-bank/deck", writingHandler.Deck)
		r.Delete("/writing/error-bank/{id}", writingHandler.Delete)
		r.Get("/events", eventHandler.Recent)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func sampleItem(t *testing.T, term string) *domain.VocabularyItem {
	t.Helper()
	item, err := domain.NewVocabularyItem(uuid.New(), term, []string{"meaning"}, []string{"gre"}, fixedNow)
	require.NoError(t, err)
	return item
}
