package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/lexis/internal/config"
	"github.com/phrazzld/lexis/internal/events"
	"github.com/phrazzld/lexis/internal/platform/postgres"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/service/auth"
	"github.com/phrazzld/lexis/internal/store"
)

// application holds all the shared application dependencies to simplify management.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	vocabStore        store.VocabStore
	reviewLogStore    store.ReviewLogStore
	packStore         store.PackStore
	writingErrorStore store.WritingErrorStore
	eventStore        store.EventStore

	// jwtService is nil when no signing secret is configured; the API is
	// then served without authentication.
	jwtService     auth.JWTService
	vocabService   service.VocabService
	reviewService  service.ReviewService
	sessionService service.SessionService
	syncService    service.SyncService
	packService    service.PackService
	writingService service.WritingService
	eventService   service.EventService

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	if cfg.Auth.Enabled() {
		jwtService, err := auth.NewJWTService(cfg.Auth.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		app.jwtService = jwtService
		logger.Info("bearer token authentication enabled")
	} else {
		logger.Warn("auth.jwt_secret not set, API is unauthenticated")
	}

	app.vocabStore = postgres.NewPostgresVocabStore(db, logger)
	app.reviewLogStore = postgres.NewPostgresReviewLogStore(db, logger)
	app.packStore = postgres.NewPostgresPackStore(db, logger)
	app.writingErrorStore = postgres.NewPostgresWritingErrorStore(db, logger)
	app.eventStore = postgres.NewPostgresEventStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewStoreRecorder(app.eventStore, logger))

	tx := service.NewSQLTxManager(db, service.Stores{
		Vocabs:     app.vocabStore,
		ReviewLogs: app.reviewLogStore,
		Packs:      app.packStore,
	})
	opts := []service.Option{service.WithEmitter(app.eventEmitter)}

	settings, err := service.LoadSessionSettings(cfg.Session.Timezone, cfg.Session.DefaultLimit, cfg.Session.MaxLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load session settings: %w", err)
	}

	if app.vocabService, err = service.NewVocabService(tx, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create vocab service: %w", err)
	}
	if app.reviewService, err = service.NewReviewService(tx, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}
	if app.sessionService, err = service.NewSessionService(tx, settings, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}
	if app.syncService, err = service.NewSyncService(tx, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create sync service: %w", err)
	}
	if app.packService, err = service.NewPackService(tx, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create pack service: %w", err)
	}
	if app.writingService, err = service.NewWritingService(app.writingErrorStore, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create writing service: %w", err)
	}
	if app.eventService, err = service.NewEventService(app.eventStore); err != nil {
		return nil, fmt.Errorf("failed to create event service: %w", err)
	}

	return app, nil
}
