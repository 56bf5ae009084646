package handler

import (
	"net/http"

	"github.com/calldeck/callquery/internal/api/response"
	"github.com/calldeck/callquery/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	queryService *service.QueryService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(queryService *service.QueryService) *SessionHandler {
	return &SessionHandler{queryService: queryService}
}

// Clear deletes all turns for a session. Always reports success: clearing is
// idempotent and an unknown identifier is indistinguishable from an already
// cleared one.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.queryService.ClearSession(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to clear session")
	}

	response.OK(w, map[string]string{
		"message":    "session cleared",
		"session_id": sessionID,
	})
}

// History returns the session's conversation turns in order
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.queryService.SessionHistory(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, map[string]any{
		"session_id": sessionID,
		"turns":      turns,
	})
}
