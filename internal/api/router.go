package api

import (
	"net/http"

	"github.com/calldeck/callquery/internal/api/handler"
	custommw "github.com/calldeck/callquery/internal/api/middleware"
	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/repository/redis"
	"github.com/calldeck/callquery/internal/schema"
	"github.com/calldeck/callquery/internal/service"
	"github.com/calldeck/callquery/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps bundles the components the router exposes over HTTP. RateLimiter is
// optional; nil disables rate limiting.
type Deps struct {
	Query       *service.QueryService
	LLM         *llm.Router
	Store       store.Store
	Schema      *schema.Descriptor
	RateLimiter *redis.RateLimiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommw.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	queryHandler := handler.NewQueryHandler(deps.Query)
	sessionHandler := handler.NewSessionHandler(deps.Query)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Store))
		r.Get("/examples", handler.ListExamples)
		r.Get("/schema", handler.DescribeSchema(deps.Schema))
		r.Get("/llm-providers", handler.ListLLMProviders(deps.LLM))

		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(custommw.NewRateLimitMiddleware(deps.RateLimiter).Limit)
			}

			r.Post("/query", queryHandler.Ask)

			r.Route("/sessions/{sessionID}", func(r chi.Router) {
				r.Delete("/", sessionHandler.Clear)
				r.Get("/history", sessionHandler.History)
			})
		})
	})

	return r
}
