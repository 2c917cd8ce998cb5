package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// NewCORS returns a CORS middleware for the given origins. An empty list
// disables cross-origin access.
func NewCORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{TraceHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
