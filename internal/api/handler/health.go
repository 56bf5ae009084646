package handler

import (
	"net/http"

	"github.com/calldeck/callquery/internal/api/response"
	"github.com/calldeck/callquery/internal/llm"
	"github.com/calldeck/callquery/internal/store"
)

// HealthCheck returns a simple health check response
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "ok",
	})
}

// ReadyCheck returns readiness status including dataset connectivity
func ReadyCheck(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "database not ready")
			return
		}

		response.OK(w, map[string]string{
			"status": "ready",
		})
	}
}

// ListLLMProviders returns the registered LLM providers
func ListLLMProviders(router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]any{
			"providers":        router.GetProvidersInfo(),
			"default_provider": router.DefaultProvider(),
		})
	}
}

var exampleQuestions = []string{
	"How many calls did we receive last month?",
	"Which employee handled the most calls in the last 10 business days?",
	"What is the average call duration per call type?",
	"List the top 5 customers by number of calls this year.",
	"How many complaint calls are still unresolved?",
	"Which day of the week has the highest call volume?",
}

// ListExamples returns starter questions for the UI
func ListExamples(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]any{
		"examples": exampleQuestions,
	})
}
