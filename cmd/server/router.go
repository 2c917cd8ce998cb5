package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/lexis/internal/api"
	apiMiddleware "github.com/phrazzld/lexis/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewCORS(app.config.CORS.AllowedOrigins))

	vocabHandler := api.NewVocabHandler(app.vocabService, app.reviewService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)
	syncHandler := api.NewSyncHandler(app.syncService, app.logger)
	packHandler := api.NewPackHandler(app.packService, app.logger)
	writingHandler := api.NewWritingHandler(app.writingService, app.logger)
	eventHandler := api.NewEventHandler(app.eventService, app.logger)
	healthHandler := api.NewHealthHandler(app.db)

	r.Route("/api", func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}

		r.Route("/vocab", func(r chi.Router) {
			r.Post("/", vocabHandler.Add)
			r.Get("/", vocabHandler.List)
			r.Get("/{id}", vocabHandler.Get)
			r.Patch("/{id}", vocabHandler.Edit)
			r.Delete("/{id}", vocabHandler.Delete)
			r.Get("/{id}/reviews", vocabHandler.History)
		})

		r.Post("/reviews", reviewHandler.Submit)
		r.Get("/session/today", sessionHandler.Today)

		r.Get("/sync/export", syncHandler.Export)
		r.Post("/sync/import", syncHandler.Import)

		r.Route("/packs", func(r chi.Router) {
			r.Post("/", packHandler.Create)
			r.Get("/", packHandler.List)
			r.Get("/{id}", packHandler.Get)
			r.Post("/{id}/vocab", packHandler.AddVocab)
			r.Get("/{id}/session", packHandler.Session)
		})

		r.Route("/writing/error-bank", func(r chi.Router) {
			r.Post("/", writingHandler.Record)
			r.Get("/", writingHandler.List)
			r.Get("/deck", writingHandler.Deck)
			r.Delete("/{id}", writingHandler.Delete)
		})

		r.Get("/events", eventHandler.Recent)
	})

	r.Get("/health", healthHandler.Check)

	return r
}
