// Package http wires the handlers into a chi router with the service's
// middleware stack.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docrag/internal/handlers"
)

// Deps holds the handlers the router exposes.
type Deps struct {
	Welcome *handlers.WelcomeHandler
	Data    *handlers.DataHandler
	NLP     *handlers.NLPHandler
	Health  *handlers.HealthHandler
}

// NewRouter creates the HTTP router.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodGet, "/", deps.Welcome)
		r.Route("/data", func(r chi.Router) {
			r.Post("/upload/{projectID}", deps.Data.Upload)
			r.Post("/process/{projectID}", deps.Data.Process)
		})
		r.Route("/nlp", func(r chi.Router) {
			r.Post("/index/push/{projectID}", deps.NLP.IndexPush)
			r.Get("/index/info/{projectID}", deps.NLP.IndexInfo)
			r.Post("/index/search/{projectID}", deps.NLP.Search)
			r.Post("/index/answer/{projectID}", deps.NLP.Answer)
		})
	})

	r.Method(http.MethodGet, "/api/health", deps.Health)

	return r
}
