package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/domain/session"
	"github.com/phrazzld/lexis/internal/platform/logger"
)

// SessionSettings bound the size of a session and define its local day.
type SessionSettings struct {
	Location     *time.Location
	DefaultLimit int
	MaxLimit     int
}

// LoadSessionSettings resolves an IANA timezone name into SessionSettings.
func LoadSessionSettings(timezone string, defaultLimit, maxLimit int) (SessionSettings, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return SessionSettings{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}
	return SessionSettings{Location: loc, DefaultLimit: defaultLimit, MaxLimit: maxLimit}, nil
}

// TodaySession is the study list for the current moment.
type TodaySession struct {
	GeneratedAt time.Time
	Limit       int
	New         []*domain.VocabularyItem
	Due         []*domain.VocabularyItem
}

// SessionService assembles daily study sessions.
type SessionService interface {
	// Today selects due and new items. A non-positive limit means the
	// configured default; larger limits are capped at the configured max.
	Today(ctx context.Context, limit int) (*TodaySession, error)
}

type sessionServiceImpl struct {
	runtime
	tx       TxManager
	settings SessionSettings
	logger   *slog.Logger
}

var _ SessionService = (*sessionServiceImpl)(nil)

// NewSessionService creates a new SessionService.
func NewSessionService(
	tx TxManager,
	settings SessionSettings,
	logger *slog.Logger,
	opts ...Option,
) (SessionService, error) {
	if tx == nil {
		return nil, NewServiceError("session", "init", "tx manager cannot be nil", domain.ErrValidation)
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.MaxLimit <= 0 {
		return nil, NewServiceError("session", "init", "max limit must be positive", domain.ErrValidation)
	}
	if settings.DefaultLimit <= 0 || settings.DefaultLimit > settings.MaxLimit {
		settings.DefaultLimit = settings.MaxLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionServiceImpl{
		runtime:  newRuntime(opts),
		tx:       tx,
		settings: settings,
		logger:   logger.With(slog.String("component", "session_service")),
	}, nil
}

// Today implements SessionService.Today.
func (s *sessionServiceImpl) Today(ctx context.Context, limit int) (*TodaySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	limit = s.clampLimit(limit)
	now := s.now().In(s.settings.Location)

	items, err := s.tx.Stores().Vocabs.List(ctx)
	if err != nil {
		log.Error("failed to load items for session", slog.String("error", err.Error()))
		return nil, NewServiceError("session", "today", "failed to load items", err)
	}

	sel := session.SelectToday(items, now, limit)
	log.Debug("session assembled",
		slog.Int("limit", limit),
		slog.Int("due", len(sel.Due)),
		slog.Int("new", len(sel.New)))

	return &TodaySession{
		GeneratedAt: now,
		Limit:       limit,
		New:         sel.New,
		Due:         sel.Due,
	}, nil
}

func (s *sessionServiceImpl) clampLimit(limit int) int {
	if limit <= 0 {
		return s.settings.DefaultLimit
	}
	return min(limit, s.settings.MaxLimit)
}
