package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWritingService(t *testing.T, bank store.WritingErrorStore, now *time.Time) WritingService {
	t.Helper()
	svc, err := NewWritingService(bank, nil,
		WithClock(func() time.Time { return *now }),
		WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	return svc
}

func TestNewWritingServiceRequiresStore(t *testing.T) {
	_, err := NewWritingService(nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWritingService_RecordCountsRepeats(t *testing.T) {
	bank := newMemWritingErrorStore()
	now := testNow
	svc := newWritingService(t, bank, &now)
	ctx := context.Background()

	first, err := svc.Record(ctx, WritingErrorInput{
		Sentence:          "He go to school.",
		CorrectedSentence: "He goes to school.",
		Category:          domain.CategoryGrammar,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)

	now = testNow.Add(time.Hour)
	topic := "education"
	again, err := svc.Record(ctx, WritingErrorInput{
		Sentence:          "  he GO to school. ",
		CorrectedSentence: "He goes to school.",
		Category:          domain.CategoryGrammar,
		Topic:             &topic,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.Count)
	assert.Equal(t, "He go to school.", again.Sentence, "first spelling kept")
	require.NotNil(t, again.Topic)
	assert.Equal(t, "education", *again.Topic)
	assert.True(t, again.UpdatedAt.Equal(now))
	assert.True(t, again.CreatedAt.Equal(testNow))

	other, err := svc.Record(ctx, WritingErrorInput{
		Sentence:          "He go to school.",
		CorrectedSentence: "He goes to school.",
		Category:          domain.CategoryWordChoice,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "category is part of the identity")
}

func TestWritingService_RecordRejects(t *testing.T) {
	svc := newWritingService(t, newMemWritingErrorStore(), &testNow)
	ctx := context.Background()

	_, err := svc.Record(ctx, WritingErrorInput{Sentence: " ", CorrectedSentence: "x", Category: domain.CategoryGrammar})
	assert.ErrorIs(t, err, domain.ErrEmptySentence)

	_, err = svc.Record(ctx, WritingErrorInput{Sentence: "a", CorrectedSentence: "b", Category: "style"})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestWritingService_RecordStoreFailure(t *testing.T) {
	bank := newMemWritingErrorStore()
	bank.fail = errors.New("connection reset")
	svc := newWritingService(t, bank, &testNow)

	_, err := svc.Record(context.Background(), WritingErrorInput{
		Sentence: "a", CorrectedSentence: "b", Category: domain.CategorySpelling,
	})
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "record", svcErr.Operation)
}

func TestWritingService_ListAndDeck(t *testing.T) {
	bank := newMemWritingErrorStore()
	now := testNow
	svc := newWritingService(t, bank, &now)
	ctx := context.Background()

	travel := "travel"
	record := func(sentence string, category domain.ErrorCategory, topic *string) {
		_, err := svc.Record(ctx, WritingErrorInput{
			Sentence: sentence, CorrectedSentence: sentence + "!", Category: category, Topic: topic,
		})
		require.NoError(t, err)
		now = now.Add(time.Minute)
	}
	record("recieve", domain.CategorySpelling, nil)
	record("make a photo", domain.CategoryCollocation, &travel)
	record("make a photo", domain.CategoryCollocation, &travel)
	record("definately", domain.CategorySpelling, nil)

	deck, err := svc.Deck(ctx, 0)
	require.NoError(t, err)
	require.Len(t, deck, 3)
	assert.Equal(t, "make a photo", deck[0].Sentence, "most frequent first")
	assert.Equal(t, "definately", deck[1].Sentence, "then most recent")

	spelling, err := svc.List(ctx, WritingErrorQuery{Category: domain.CategorySpelling})
	require.NoError(t, err)
	assert.Len(t, spelling, 2)

	byTopic, err := svc.List(ctx, WritingErrorQuery{Topic: "travel"})
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	assert.Equal(t, 2, byTopic[0].Count)

	second, err := svc.List(ctx, WritingErrorQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, second, 1)

	_, err = svc.List(ctx, WritingErrorQuery{Category: "style"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWritingService_Delete(t *testing.T) {
	bank := newMemWritingErrorStore()
	svc := newWritingService(t, bank, &testNow)
	ctx := context.Background()

	entry, err := svc.Record(ctx, WritingErrorInput{Sentence: "a", CorrectedSentence: "b", Category: domain.CategoryCohesion})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))
	assert.Empty(t, bank.entries)
	assert.ErrorIs(t, svc.Delete(ctx, entry.ID), store.ErrWritingErrorNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, uuid.New()), store.ErrNotFound)
}
