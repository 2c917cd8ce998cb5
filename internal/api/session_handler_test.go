package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionHandler_Today(t *testing.T) {
	due := sampleItem(t, "obdurate")
	fresh := sampleItem(t, "lucid")
	ict := time.FixedZone("ICT", 7*3600)

	var gotLimit int
	session := &stubSessionService{
		todayFn: func(_ context.Context, limit int) (*service.TodaySession, error) {
			gotLimit = limit
			return &service.TodaySession{
				GeneratedAt: fixedNow.In(ict),
				Limit:       30,
				Due:         []*domain.VocabularyItem{due},
				New:         []*domain.VocabularyItem{fresh},
			}, nil
		},
	}
	h := testRouter(stubs{session: session})

	rec := do(t, h, http.MethodGet, "/api/session/today", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, gotLimit)
	assert.Contains(t, rec.Body.String(), `"generated_at":"2025-06-10T15:00:00+07:00"`)
	resp := decodeBody[SessionResponse](t, rec)
	require.Len(t, resp.Due, 1)
	require.Len(t, resp.New, 1)
	assert.Equal(t, "obdurate", resp.Due[0].TermNormalized)

	rec = do(t, h, http.MethodGet, "/api/session/today?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, gotLimit)

	rec = do(t, h, http.MethodGet, "/api/session/today?limit=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
