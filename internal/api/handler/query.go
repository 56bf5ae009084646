package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calldeck/callquery/internal/api/response"
	"github.com/calldeck/callquery/internal/domain"
	"github.com/calldeck/callquery/internal/service"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// QueryHandler handles question answering endpoints
type QueryHandler struct {
	queryService *service.QueryService
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(queryService *service.QueryService) *QueryHandler {
	return &QueryHandler{queryService: queryService}
}

// Ask answers a natural-language question about the dataset
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req domain.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.queryService.Ask(r.Context(), req.Question, req.SessionID)
	if err != nil {
		var perr *service.PipelineError
		if errors.As(err, &perr) {
			switch perr.Kind {
			case service.KindUpstreamUnavailable:
				response.Error(w, http.StatusServiceUnavailable, perr.Error())
			default:
				response.InternalError(w, perr.Error())
			}
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, result)
}
