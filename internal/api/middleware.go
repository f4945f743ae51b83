// Package api implements the preview HTTP surface using chi.
package api

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware lets any origin read the preview endpoints, so a local
// copy of the blog can render drafts from this server.
func CORSMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
